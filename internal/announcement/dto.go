package announcement

import "github.com/frahmantamala/tandengan-portal/internal/villageapi"

type AnnouncementDTO struct {
	Title      string `json:"title" validate:"required,max=200"`
	Body       string `json:"body" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	CategoryID string `json:"categoryId" validate:"required"`
}

func (d AnnouncementDTO) toInput() villageapi.AnnouncementInput {
	return villageapi.AnnouncementInput{
		Title:      d.Title,
		Body:       d.Body,
		Date:       d.Date,
		CategoryID: d.CategoryID,
	}
}

type CategoryDTO struct {
	Name string `json:"name" validate:"required,max=100"`
}

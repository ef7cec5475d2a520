package finance

import "github.com/frahmantamala/tandengan-portal/internal/villageapi"

type PeriodDTO struct {
	Year int `json:"year" validate:"required,min=2000,max=2100"`
}

type ItemDTO struct {
	Description string  `json:"description" validate:"required,max=255"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	PeriodID    string  `json:"periodId" validate:"required"`
}

func (d ItemDTO) toInput() villageapi.FinanceItemInput {
	return villageapi.FinanceItemInput{
		Description: d.Description,
		Amount:      d.Amount,
		PeriodID:    d.PeriodID,
	}
}

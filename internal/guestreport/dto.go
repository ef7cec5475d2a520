package guestreport

import "github.com/frahmantamala/tandengan-portal/internal/villageapi"

type RegisterDTO struct {
	Name          string `json:"name" validate:"required,max=100"`
	NationalID    string `json:"nationalId" validate:"required,numeric,len=16"`
	OriginAddress string `json:"originAddress" validate:"required,max=255"`
	Purpose       string `json:"purpose" validate:"required,max=255"`
	StayDuration  string `json:"stayDuration" validate:"required,oneof=KURANG_DARI_1_MINGGU 1_MINGGU 2_MINGGU 1_BULAN LEBIH_DARI_1_BULAN"`
	StayLocation  string `json:"stayLocation" validate:"required,max=255"`
	Phone         string `json:"phone" validate:"required,min=8,max=20"`
}

func (d RegisterDTO) toInput() villageapi.GuestReportInput {
	return villageapi.GuestReportInput{
		Name:          d.Name,
		NationalID:    d.NationalID,
		OriginAddress: d.OriginAddress,
		Purpose:       d.Purpose,
		StayDuration:  villageapi.StayDuration(d.StayDuration),
		StayLocation:  d.StayLocation,
		Phone:         d.Phone,
	}
}

type DecisionDTO struct {
	StatusMessage string `json:"statusMessage" validate:"max=500"`
}

type LookupDTO struct {
	TrackingCode string `json:"trackingCode"`
}

package guestreport

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

var exportHeader = []string{
	"Kode Pelacakan",
	"Nama",
	"NIK",
	"Alamat Asal",
	"Tujuan",
	"Lama Tinggal",
	"Lokasi Tinggal",
	"No. HP",
	"Status",
	"Keterangan",
	"Tanggal Daftar",
}

// ExportFilename stamps the download with the export date.
func ExportFilename(now time.Time) string {
	return "tamu-wajib-lapor-" + now.Format("2006-01-02") + ".csv"
}

// WriteCSV writes a header and one row per report. Fields holding a comma,
// quote or line break are quoted with embedded quotes doubled.
func WriteCSV(w io.Writer, reports []villageapi.GuestReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, g := range reports {
		created := ""
		if !g.CreatedAt.IsZero() {
			created = g.CreatedAt.Format("2006-01-02 15:04")
		}
		row := []string{
			g.TrackingCode,
			g.Name,
			g.NationalID,
			g.OriginAddress,
			g.Purpose,
			g.StayDuration.Label(),
			g.StayLocation,
			g.Phone,
			string(g.Status),
			g.StatusMessage,
			created,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

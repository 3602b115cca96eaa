package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gorm.io/gorm"

	"github.com/ginjaninja78/missouri-lobbying/internal/logger"
	"github.com/ginjaninja78/missouri-lobbying/internal/store"
)

// ExportHeader is the column set of the expenditure download.
var ExportHeader = []string{
	"lobbyist_first_name",
	"lobbyist_last_name",
	"report_period",
	"recipient_name",
	"recipient_type",
	"legislator_first_name",
	"legislator_last_name",
	"legislator_office",
	"legislator_party",
	"legislator_district",
	"event_date",
	"category",
	"description",
	"cost",
	"organization_name",
	"organization_industry",
	"group",
	"ethics_board_id",
	"is_solicitation",
}

const exportBatch = 500

// ExportCSV writes every expenditure, in id order, with its related entities
// flattened. It returns the number of rows written.
func (r *Reporter) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}

	written := 0
	var batch []store.Expenditure
	err := r.db.WithContext(ctx).
		Preload("Lobbyist").
		Preload("Legislator").
		Preload("Organization").
		Preload("Group").
		FindInBatches(&batch, exportBatch, func(tx *gorm.DB, n int) error {
			for i := range batch {
				if err := cw.Write(exportRow(&batch[i])); err != nil {
					return err
				}
				written++
			}
			log := logger.FromContext(ctx)
			log.Debug().Int("batch", n).Int("rows", written).Msg("export batch written")
			cw.Flush()
			return cw.Error()
		}).Error
	if err != nil {
		return written, fmt.Errorf("export: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("export: %w", err)
	}
	return written, nil
}

func exportRow(e *store.Expenditure) []string {
	var legFirst, legLast, office, party, district string
	if leg := e.Legislator; leg != nil {
		legFirst, legLast = leg.FirstName, leg.LastName
		office, party = leg.Office.String(), leg.Party.String()
		district = strconv.Itoa(leg.District)
	}

	var group string
	if e.Group != nil {
		group = e.Group.Name
	}

	var ethicsID string
	if e.EthicsBoardID != 0 {
		ethicsID = strconv.FormatInt(e.EthicsBoardID, 10)
	}

	return []string{
		e.Lobbyist.FirstName,
		e.Lobbyist.LastName,
		e.ReportPeriod.Format("2006-01-02"),
		e.RecipientName,
		e.RecipientType,
		legFirst,
		legLast,
		office,
		party,
		district,
		e.EventDate.Format("2006-01-02"),
		e.Category,
		e.Description,
		e.Cost.StringFixed(2),
		e.Organization.Name,
		e.Organization.Category,
		group,
		ethicsID,
		strconv.FormatBool(e.IsSolicitation),
	}
}

package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/repository"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/rs/zerolog/log"
)

const recalcPageSize = 200

// NewRecalcHandler recalculates the commission of every record in the
// requested range. Recalculation is an upsert, so a retried job simply
// overwrites what the failed attempt already wrote.
func NewRecalcHandler(records repository.ServiceRecordRepository, commissions service.CommissionService) Handler {
	return func(ctx context.Context, payload json.RawMessage) error {
		var req dto.CommissionRecalcRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}

		filter := dto.ServiceRecordFilter{BarberID: req.BarberID, From: req.From, To: req.To, Limit: recalcPageSize}
		done, failed := 0, 0
		var firstErr error
		for page := 1; ; page++ {
			filter.Page = page
			batch, total, err := records.List(ctx, filter)
			if err != nil {
				return err
			}
			for i := range batch {
				if _, err := commissions.Recalculate(ctx, batch[i].ID); err != nil {
					failed++
					if firstErr == nil {
						firstErr = fmt.Errorf("record %s: %w", batch[i].ID, err)
					}
					continue
				}
				done++
			}
			if len(batch) == 0 || int64(page*recalcPageSize) >= total {
				break
			}
		}

		log.Info().
			Str("barber", req.BarberID).
			Str("from", req.From).
			Str("to", req.To).
			Int("recalculated", done).
			Int("failed", failed).
			Msg("commission recalculation finished")
		return firstErr
	}
}

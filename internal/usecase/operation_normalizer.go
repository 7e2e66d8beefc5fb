package usecase

import (
	"strings"
	"time"

	"freight-tracking-service/internal/domain/analytics"
	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/pkg/logger"
	"freight-tracking-service/pkg/utils"
)

// OperationNormalizer turns storage rows into typed operations.
// Date parsing and cancellation detection happen here and nowhere else.
type OperationNormalizer struct {
	parser *utils.DateParser
	logger logger.Logger
}

// NewOperationNormalizer creates a new normalizer
func NewOperationNormalizer(parser *utils.DateParser, logger logger.Logger) *OperationNormalizer {
	return &OperationNormalizer{
		parser: parser,
		logger: logger,
	}
}

// Normalize converts one raw row
func (n *OperationNormalizer) Normalize(raw entity.RawOperation) entity.Operation {
	op := entity.Operation{
		ID:                         raw.ID,
		Booking:                    strings.TrimSpace(raw.Booking),
		Container:                  strings.TrimSpace(raw.Container),
		Client:                     strings.TrimSpace(raw.Client),
		ScheduledStart:             n.parseDate(raw, "scheduledStart", raw.ScheduledStart),
		RecalculatedScheduledStart: n.parseDate(raw, "recalculatedScheduledStart", raw.RecalculatedScheduledStart),
		ActualStart:                n.parseDate(raw, "actualStart", raw.ActualStart),
		ActualEnd:                  n.parseDate(raw, "actualEnd", raw.ActualEnd),
		OperationStatus:            raw.OperationStatus,
		SituationFlag:              raw.SituationFlag,
		Canceled:                   entity.HasCancellationSignal(raw.OperationStatus, raw.SituationFlag),
	}

	reason := ""
	if raw.DelayReason != nil {
		reason = *raw.DelayReason
	}
	op.DelayReason = analytics.NormalizeDelayReason(reason)

	return op
}

// NormalizeAll converts rows in order, skipping nil entries
func (n *OperationNormalizer) NormalizeAll(raws []*entity.RawOperation) []entity.Operation {
	ops := make([]entity.Operation, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		ops = append(ops, n.Normalize(*raw))
	}
	return ops
}

func (n *OperationNormalizer) parseDate(raw entity.RawOperation, field string, value *string) *time.Time {
	parsed := n.parser.ParsePtr(value)
	if parsed == nil && value != nil && strings.TrimSpace(*value) != "" {
		n.logger.Debug("Unparseable date treated as missing",
			"booking", raw.Booking,
			"field", field,
			"value", *value)
	}
	return parsed
}

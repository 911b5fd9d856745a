package list_staff_appointments

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var errMissingDate = errors.New("date is required")

type listQuery struct {
	date            time.Time
	includeInactive bool
}

// parseQuery разбирает query параметры date и includeInactive
func parseQuery(dateStr, includeInactiveStr string) (*listQuery, error) {
	if dateStr == "" {
		return nil, errMissingDate
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	q := &listQuery{date: date}

	// По умолчанию только активные
	if includeInactiveStr != "" {
		q.includeInactive, err = strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
	}

	return q, nil
}

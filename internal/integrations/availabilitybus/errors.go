package availabilitybus

import "errors"

var (
	// ErrInternal возвращается при ошибке сериализации события
	ErrInternal = errors.New("availabilitybus: internal error")

	// ErrPublish возвращается, когда Redis не принял событие
	ErrPublish = errors.New("availabilitybus: failed to publish event")
)

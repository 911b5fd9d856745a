package migrate_legacy

import "errors"

var (
	// ErrUnparseableLegacyTime возвращается, когда legacy-время не в формате HH:MM
	ErrUnparseableLegacyTime = errors.New("migrate_legacy: unparseable legacy time")

	// ErrDayBoundaryOverflow возвращается, когда запись заканчивается после полуночи.
	// Такие записи не обрезаются, а помечаются для ручного разбора.
	ErrDayBoundaryOverflow = errors.New("migrate_legacy: appointment overflows the day boundary")

	// ErrInvalidLegacyDuration возвращается при неположительной или слишком большой длительности
	ErrInvalidLegacyDuration = errors.New("migrate_legacy: invalid legacy duration")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("migrate_legacy: internal error")
)

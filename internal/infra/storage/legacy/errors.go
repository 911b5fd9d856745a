package legacy

import "errors"

var (
	// ErrRecordNotFound возвращается, когда обновляемая запись не найдена или уже мигрирована
	ErrRecordNotFound = errors.New("legacy.repository: record not found or already migrated")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("legacy.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("legacy.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("legacy.repository: failed to scan row")
)

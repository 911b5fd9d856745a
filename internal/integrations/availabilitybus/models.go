package availabilitybus

// Причины инвалидации доступности
const (
	ReasonReserved  = "reserved"
	ReasonCancelled = "cancelled"
	ReasonCompleted = "completed"
)

// Event сообщение об изменении занятости сотрудника на дату.
// Внешние кэши доступности должны сбросить ключ (staffId, date).
type Event struct {
	StaffID int64  `json:"staffId"`
	Date    string `json:"date"` // YYYY-MM-DD
	Reason  string `json:"reason"`
}

package domain

// TimestampLayout — формат временных меток во внешних представлениях:
// ISO-8601 с явным числовым смещением, например 2024-05-01T12:30:00+0300.
const TimestampLayout = "2006-01-02T15:04:05-0700"

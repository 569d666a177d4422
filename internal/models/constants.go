package models

const (
	// PlaceholderServiceName is snapshotted into orders whose service
	// reference does not resolve.
	PlaceholderServiceName = "Услуга"

	// Defaults applied to contact submissions with missing fields.
	DefaultContactName  = "Клиент"
	DefaultContactEmail = "client@example.com"
	DefaultContactPhone = "+7 (999) 999-99-99"
)

const (
	// DefaultSessionTTL время жизни сессии конфигуратора в Redis
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// RateLimitSubmissions количество отправок формы в окне
	RateLimitSubmissions = 5

	// RateLimitWindow окно ограничения частоты отправок
	RateLimitWindow = 60 // 1 минута в секундах

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000
)

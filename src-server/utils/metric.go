package utils

type Metric struct {
	DatabaseRead        chan float64
	DatabaseWrite       chan float64
	RegistrationCreated chan struct{}
	PaymentConfirmed    chan struct{}
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:        make(chan float64),
		DatabaseWrite:       make(chan float64),
		RegistrationCreated: make(chan struct{}, 8),
		PaymentConfirmed:    make(chan struct{}, 8),
	}
}

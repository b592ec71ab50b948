package metric

import (
	"log/slog"

	"confreg/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func registrationCreated(as *utils.AppState) {
	registrations := promauto.NewCounter(prometheus.CounterOpts{
		Name: "confreg_registrations_total",
		Help: "Participants inserted by the registration workflow",
	})
	if err := prometheus.Register(registrations); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register confreg_registrations_total metric", "error", err)
		}
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		for {
			select {
			case <-gracefulShutdownCh:
				prometheus.Unregister(registrations)
				return
			case <-as.MetricChans.RegistrationCreated:
				registrations.Inc()
			}
		}
	}()
}

func paymentConfirmed(as *utils.AppState) {
	payments := promauto.NewCounter(prometheus.CounterOpts{
		Name: "confreg_payments_confirmed_total",
		Help: "Payment callbacks that resulted in a participant marked as paid",
	})
	if err := prometheus.Register(payments); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register confreg_payments_confirmed_total metric", "error", err)
		}
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		for {
			select {
			case <-gracefulShutdownCh:
				prometheus.Unregister(payments)
				return
			case <-as.MetricChans.PaymentConfirmed:
				payments.Inc()
			}
		}
	}()
}

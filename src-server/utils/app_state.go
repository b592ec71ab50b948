package utils

import (
	"database/sql"
	"log/slog"
	"os"
	"sync"

	"confreg/src-server/email"
	"confreg/src-server/gpwebpay"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config  *Config
	RawDB   *sql.DB
	BunDB   *bun.DB
	Gateway gpwebpay.Gateway
	Emailer email.Sender

	MetricChans *Metric

	// closing the app down; main listens on this
	AppCloseSignalChan chan os.Signal

	gracefulShutdownMutex sync.Mutex
	gracefulShutdownChans []chan struct{}
}

func NewAppState() *AppState {
	as := &AppState{}

	as.MetricChans = NewMetric()
	as.AppCloseSignalChan = make(chan os.Signal, 1)

	// env
	as.Config = NewConfig()

	// database
	as.RawDB = sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(as.Config.GetDatabaseURL()),
	))
	as.RawDB.SetMaxIdleConns(8)
	if err := as.RawDB.Ping(); err != nil {
		slog.Error("cannot reach the database", "error", err)
		os.Exit(1)
	}

	as.BunDB = bun.NewDB(as.RawDB, pgdialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	// payment gateway
	as.Gateway = gpwebpay.NewClient(
		as.Config.GetGatewayMerchantNumber(),
		as.Config.GetGatewayPrivateKey(),
		as.Config.GetGatewayPublicKey(),
		as.Config.GetGatewayURL(),
		as.Config.GetGatewayCallbackURL(),
		as.Config.GetGatewayCurrency(),
	)

	// outbound email
	as.Emailer = &email.Emailer{
		Server:        as.Config.GetEmailServer(),
		Port:          as.Config.GetEmailPort(),
		FromAddr:      as.Config.GetEmailFrom(),
		SubjectPrefix: as.Config.GetEmailSubjectPrefix(),
		CC:            as.Config.GetEmailCC(),
		Username:      as.Config.GetEmailUsername(),
		Password:      as.Config.GetEmailPassword(),
		Enabled:       as.Config.GetEmailEnabled(),
	}

	return as
}

// CreateGracefulShutdownChan returns a channel closed when the app shuts
// down; metric collectors use it to unregister themselves.
func (as *AppState) CreateGracefulShutdownChan() chan struct{} {
	as.gracefulShutdownMutex.Lock()
	defer as.gracefulShutdownMutex.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return ch
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownMutex.Lock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
	as.gracefulShutdownMutex.Unlock()

	if err := as.BunDB.Close(); err != nil {
		slog.Warn("can't close the database", "error", err)
	}
}

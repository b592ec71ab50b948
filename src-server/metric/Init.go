package metric

import (
	"time"

	"confreg/src-server/utils"
)

// Init registers all collectors and keeps them fed until graceful
// shutdown. Run in its own goroutine.
func Init(as *utils.AppState) {
	probeInterval := 60 * time.Second
	clearInterval := 5 * time.Minute

	databaseEmptyRead(as, &probeInterval)
	databaseRead(as, &clearInterval)
	databaseWrite(as, &clearInterval)
	registrationCreated(as)
	paymentConfirmed(as)
}

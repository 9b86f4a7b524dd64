package jobs

import (
	"log"
	"time"

	"github.com/anjiri1684/activity_hub/services"
)

// ExpireWaitlistClaims forfeits lapsed claim windows and notifies the next
// family in line for each affected class.
func ExpireWaitlistClaims() {
	log.Println("Running job: ExpireWaitlistClaims...")
	services.ExpireStaleClaims(time.Now())
}

package jobs

import (
	"log"
	"time"

	"github.com/anjiri1684/activity_hub/services"
)

// CompleteEndedClasses moves active enrollments of classes past their end
// date to completed.
func CompleteEndedClasses() {
	log.Println("Running job: CompleteEndedClasses...")
	services.CompleteFinishedClasses(time.Now())
}

package services

import (
	"errors"
	"log"
	"sort"
	"time"

	config "github.com/anjiri1684/activity_hub/configs"
	"github.com/anjiri1684/activity_hub/database"
	"github.com/anjiri1684/activity_hub/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortEntries orders a class waitlist: priority entries first, then by join
// time. Stored positions are recomputed from this ordering, never reused.
func sortEntries(entries []models.WaitlistEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsPriority != entries[j].IsPriority {
			return entries[i].IsPriority
		}
		return entries[i].JoinedAt.Before(entries[j].JoinedAt)
	})
}

func renumber(entries []models.WaitlistEntry) {
	for i := range entries {
		entries[i].Position = i + 1
	}
}

func loadWaitlistLocked(tx *gorm.DB, classID uuid.UUID) ([]models.WaitlistEntry, error) {
	// The class row is the serialization point for all waitlist mutation.
	var class models.ActivityClass
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&class, "id = ?", classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "class", ID: classID.String()}
		}
		return nil, err
	}
	var entries []models.WaitlistEntry
	if err := tx.Where("class_id = ?", classID).Order("position asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func saveWaitlistOrder(tx *gorm.DB, entries []models.WaitlistEntry) error {
	sortEntries(entries)
	renumber(entries)
	for i := range entries {
		if err := tx.Model(&models.WaitlistEntry{}).Where("id = ?", entries[i].ID).
			Update("position", entries[i].Position).Error; err != nil {
			return err
		}
	}
	return nil
}

// JoinWaitlist appends an enrollment to a class waitlist. Priority entries
// slot in after the last existing priority entry, ahead of everyone else.
func JoinWaitlist(classID, enrollmentID uuid.UUID, isPriority bool) (int, error) {
	var position int
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		position, err = joinWaitlistLocked(tx, classID, enrollmentID, isPriority)
		return err
	})
	return position, err
}

func joinWaitlistLocked(tx *gorm.DB, classID, enrollmentID uuid.UUID, isPriority bool) (int, error) {
	entries, err := loadWaitlistLocked(tx, classID)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.EnrollmentID == enrollmentID {
			return 0, &ConflictError{Message: "enrollment is already on the waitlist"}
		}
	}

	entry := models.WaitlistEntry{
		ClassID:      classID,
		EnrollmentID: enrollmentID,
		IsPriority:   isPriority,
		JoinedAt:     time.Now(),
		Position:     len(entries) + 1,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}

	entries = append(entries, entry)
	if err := saveWaitlistOrder(tx, entries); err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.ID == entry.ID {
			return e.Position, nil
		}
	}
	return len(entries), nil
}

// NotifyNext opens a claim window for the head of the waitlist and messages
// the family through the notifier. Safe to call on an empty waitlist;
// returns nil.
func NotifyNext(classID uuid.UUID) (*models.WaitlistEntry, error) {
	var head *models.WaitlistEntry
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		entries, err := loadWaitlistLocked(tx, classID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		entry := entries[0]
		now := time.Now()
		expires := now.Add(config.Policy().ClaimWindow)
		entry.NotifiedAt = &now
		entry.ClaimExpiresAt = &expires
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
		head = &entry
		return nil
	})
	if err == nil && head != nil {
		notifyWaitlistSpot(head)
	}
	return head, err
}

// ClaimWaitlistSpot converts a notified entry into a payable enrollment. An
// expired or never-opened claim fails and leaves the entry in place so an
// admin can still promote it.
func ClaimWaitlistSpot(enrollmentID uuid.UUID, now time.Time) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		entry, err := lockEntryByEnrollment(tx, enrollmentID)
		if err != nil {
			return err
		}
		if entry.NotifiedAt == nil || entry.ClaimExpiresAt == nil || now.After(*entry.ClaimExpiresAt) {
			return &ExpiredClaimError{EnrollmentID: enrollmentID.String()}
		}
		return removeEntryAndTransition(tx, entry, models.EnrollmentStatusPending)
	})
}

// PromoteWaitlistEntry is the admin path: it skips the notify/claim handshake
// and activates the enrollment directly.
func PromoteWaitlistEntry(enrollmentID uuid.UUID) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		entry, err := lockEntryByEnrollment(tx, enrollmentID)
		if err != nil {
			return err
		}
		return removeEntryAndTransition(tx, entry, models.EnrollmentStatusActive)
	})
}

func lockEntryByEnrollment(tx *gorm.DB, enrollmentID uuid.UUID) (*models.WaitlistEntry, error) {
	var probe models.WaitlistEntry
	if err := tx.Where("enrollment_id = ?", enrollmentID).First(&probe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "waitlist entry", ID: enrollmentID.String()}
		}
		return nil, err
	}
	// Re-acquire under the class lock so claim and promote serialize with
	// joins and other claims on the same class.
	entries, err := loadWaitlistLocked(tx, probe.ClassID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].EnrollmentID == enrollmentID {
			return &entries[i], nil
		}
	}
	return nil, &NotFoundError{Resource: "waitlist entry", ID: enrollmentID.String()}
}

func removeEntryAndTransition(tx *gorm.DB, entry *models.WaitlistEntry, newStatus string) error {
	var enrollment models.Enrollment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&enrollment, "id = ?", entry.EnrollmentID).Error; err != nil {
		return err
	}
	if enrollment.Status != models.EnrollmentStatusWaitlist {
		return &ConflictError{Message: "enrollment is no longer waitlisted"}
	}

	if err := tx.Delete(&models.WaitlistEntry{}, "id = ?", entry.ID).Error; err != nil {
		return err
	}

	var remaining []models.WaitlistEntry
	if err := tx.Where("class_id = ?", entry.ClassID).Order("position asc").Find(&remaining).Error; err != nil {
		return err
	}
	if err := saveWaitlistOrder(tx, remaining); err != nil {
		return err
	}

	enrollment.Status = newStatus
	if newStatus == models.EnrollmentStatusActive {
		now := time.Now()
		enrollment.ActivatedAt = &now
	}
	return tx.Save(&enrollment).Error
}

// ExpireStaleClaims forfeits claims whose window has lapsed: the entry drops
// to the back of its segment with a fresh join time (it stays promotable by
// an admin) and the next family gets notified.
func ExpireStaleClaims(now time.Time) {
	var stale []models.WaitlistEntry
	err := database.DB.Where("claim_expires_at IS NOT NULL AND claim_expires_at < ?", now).Find(&stale).Error
	if err != nil {
		log.Printf("Error loading stale waitlist claims: %v", err)
		return
	}

	seen := make(map[uuid.UUID]bool)
	for _, entry := range stale {
		classID := entry.ClassID
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			entries, err := loadWaitlistLocked(tx, classID)
			if err != nil {
				return err
			}
			changed := false
			for i := range entries {
				e := &entries[i]
				if e.ClaimExpiresAt == nil || e.ClaimExpiresAt.After(now) {
					continue
				}
				e.NotifiedAt = nil
				e.ClaimExpiresAt = nil
				e.JoinedAt = now
				if err := tx.Save(e).Error; err != nil {
					return err
				}
				changed = true
			}
			if !changed {
				return nil
			}
			return saveWaitlistOrder(tx, entries)
		})
		if err != nil {
			log.Printf("🔥 Error expiring waitlist claims for class %s: %v", classID, err)
			continue
		}
		if !seen[classID] {
			seen[classID] = true
			if _, err := NotifyNext(classID); err != nil {
				log.Printf("🔥 Error notifying next waitlist entry for class %s: %v", classID, err)
			}
		}
	}
}

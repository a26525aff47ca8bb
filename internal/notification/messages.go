package notification

import "fmt"

// Message texts sent by the election pipeline.

func CandidacyReceived(category, nominationEnd string) string {
	return fmt.Sprintf("Your nomination for %s has been received. Nomination closes on %s.", category, nominationEnd)
}

func NominationScheduled(zoneName, start, end string) string {
	return fmt.Sprintf("Nomination period for %s is set from %s to %s", zoneName, start, end)
}

func ElectionScheduled(zoneName, start, end string) string {
	return fmt.Sprintf("Election period for %s is set from %s to %s", zoneName, start, end)
}

func RequestApproved(zoneName string) string {
	return fmt.Sprintf("Your request has been approved and you are assigned to %s", zoneName)
}

func Elected(role, zoneName string) string {
	return fmt.Sprintf("You have been elected %s of %s", role, zoneName)
}

package app

import "fmt"

func reminderText(name, dosage string) string {
	if dosage == "" {
		return fmt.Sprintf("💊 Time to take your %s!", name)
	}
	return fmt.Sprintf("💊 Time to take your %s (%s)!", name, dosage)
}

func escalationText(name, phone string) string {
	return fmt.Sprintf("🚨 It seems you missed your %s dose. A call would be made to %s if fully enabled.", name, phone)
}

func missedNoPhoneText(name string) string {
	return fmt.Sprintf("🚨 It seems you missed your %s dose. Please set a phone number in settings for call alerts (/setphone +1234567890).", name)
}

func sendFailedOperatorText(instanceID, recipientID string, err error) string {
	return fmt.Sprintf("⚠️ Reminder %s for %s could not be delivered: %v", instanceID, recipientID, err)
}

func unreachableOperatorText(recipientID string, deactivated int) string {
	return fmt.Sprintf("⚠️ Recipient %s is unreachable; deactivated %d medication schedule(s).", recipientID, deactivated)
}

func escalationFailedOperatorText(instanceID, recipientID string, err error) string {
	return fmt.Sprintf("⚠️ Escalation for reminder %s (%s) failed: %v", instanceID, recipientID, err)
}

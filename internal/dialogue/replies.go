package dialogue

import (
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
)

const (
	resetReply        = "The conversation has been reset. You can start by asking a new question."
	genericErrorReply = "Sorry, I'm having trouble right now. Please try again in a moment."
	startOverHint     = " You can type 'reset' or 'start over' to begin a new conversation."

	doctorNotFoundReply = "I couldn't find the doctor you mentioned. Please enter the full name of the doctor you want to select, or type 'reset' to ask another question."
	invalidSlotReply    = "The selected time slot is not available. Please enter a valid number corresponding to the slot, or type 'reset' to start over."

	noInactiveAppointmentReply = "It appears that your doctor hasn't entered any prescriptions for you at the moment."
	noPrescriptionsReply       = "It appears that your doctor hasn't entered any new prescriptions for you at the moment."
	allRemindersActiveReply    = "All your active prescriptions already have active reminders."

	exitReply      = "Understood. Is there anything else I can help you with?"
	exitRetryReply = "I'm sorry, I didn't understand that. If you're done, you can say 'okay' or 'exit'. Is there anything else I can help you with?"

	nothingPendingReply = "All reminders have already been activated."
	declinedReply       = "Alright, I won't activate any more reminders for now. You can always ask me to activate them later."
	yesNoRetryReply     = "I didn't understand that. Please answer with 'Yes' or 'No' (or similar terms)."
)

func doctorListReply(lead string, doctors []Doctor) string {
	lines := make([]string, len(doctors))
	for i, d := range doctors {
		lines[i] = fmt.Sprintf("%s (%s)", d.Title(), d.Specialization)
	}
	return lead + "\n\nHere are the available doctors:\n" + strings.Join(lines, "\n") +
		"\n\nPlease enter the full name of the doctor you want to select, or type 'reset' to start a new conversation."
}

func noDoctorsReply(lead, specialization string) string {
	return fmt.Sprintf("%s However, no doctors were found for the specialization: %s.%s", lead, specialization, startOverHint)
}

func doctorLookupFailedReply(lead string) string {
	return lead + " Unfortunately, no doctors are available at the moment for your concerns. Please consult a healthcare professional if needed."
}

func noSlotsReply(selected Doctor, others []Doctor) string {
	head := fmt.Sprintf("Unfortunately, there are no available time slots for %s at the moment. Let me find other doctors for you.", selected.Title())
	if len(others) == 0 {
		return head + "\n\nUnfortunately, there are no other doctors available at the moment. You can type 'reset' or 'start over' at any time to begin a new conversation."
	}

	names := make([]string, len(others))
	for i, d := range others {
		names[i] = d.Title()
	}
	return head + "\n\nHere are other doctors you can choose from:\n" + strings.Join(names, "\n") +
		"\n\nPlease enter the full name of the doctor you would like to select, or type 'reset' to start over."
}

func slotListReply(doctor Doctor, slots []*timeslot.TimeSlot) string {
	lines := make([]string, len(slots))
	for i, s := range slots {
		lines[i] = fmt.Sprintf("%d. %s", i+1, s.Label())
	}
	return fmt.Sprintf("Here are the available time slots for %s:\n\n%s\n\n", doctor.Title(), strings.Join(lines, "\n")) +
		"Please enter the number corresponding to the slot you would like to book. You can also type 'reset' or 'start over' at any time to begin a new conversation."
}

func bookedReply(doctor Doctor, slot *timeslot.TimeSlot) string {
	return fmt.Sprintf("Your appointment with %s has been successfully booked for %s. ", doctor.Title(), slot.Label()) +
		"You can type 'reset' or 'start over' at any time to begin a new conversation."
}

func pendingListReply(pending []PendingPrescription) string {
	var b strings.Builder
	b.WriteString("I found the following prescriptions:\n")
	for i, p := range pending {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.MedicationName)
	}
	b.WriteString("Would you like to activate reminders for any of them? (Yes/No)")
	return b.String()
}

func activatedNextReply(medication, times, next string) string {
	return fmt.Sprintf("Reminders for %s have been activated for: %s. The prescription has been marked as inactive. "+
		"Would you like to activate reminders for the next prescription (%s)? (Yes/No)", medication, times, next)
}

func activatedDoneReply(medication, times string) string {
	return fmt.Sprintf("Reminders for %s have been activated. You'll receive reminders at: %s. "+
		"The prescription has been marked as inactive. All prescriptions have been processed.", medication, times)
}

func activationFailedReply(medication string, err error) string {
	return fmt.Sprintf("I'm sorry, there was an issue activating your reminders for %s: %s", medication, err)
}

package mailer

import "fmt"

// Welcome renders the registration confirmation email.
func Welcome(to, name string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to Our College Admission System",
		Body: fmt.Sprintf("Dear %s,\n\nThank you for registering with our college admission system. "+
			"You can now log in and apply for our programs.\n\nBest regards,\nThe Admission Team", name),
	}
}

// ApplicationSubmitted renders the submission confirmation email.
func ApplicationSubmitted(to, name, applicationNumber, programName string) Message {
	return Message{
		To:      to,
		Subject: "Application Submitted Successfully",
		Body: fmt.Sprintf("Dear %s,\n\nYour application (%s) for %s has been submitted successfully. "+
			"You can check the status of your application by logging into your account.\n\nBest regards,\nThe Admission Team",
			name, applicationNumber, programName),
	}
}

// ApplicationStatusUpdate renders the review decision email.
func ApplicationStatusUpdate(to, name, applicationNumber, programName, status string) Message {
	return Message{
		To:      to,
		Subject: "Application Status Updated",
		Body: fmt.Sprintf("Dear %s,\n\nThe status of your application (%s) for %s has been updated to %q. "+
			"Please log in to your account for more details.\n\nBest regards,\nThe Admission Team",
			name, applicationNumber, programName, status),
	}
}

// DocumentVerified renders the document verification email.
func DocumentVerified(to, name, documentName, status string) Message {
	outcome := "reviewed but needs attention"
	followUp := ""
	if status == "Approved" {
		outcome = "verified and approved"
	}
	if status == "Rejected" {
		followUp = " Please log in to your account to see the remarks and resubmit the document."
	}
	return Message{
		To:      to,
		Subject: "Document Verification Update",
		Body: fmt.Sprintf("Dear %s,\n\nYour document %q has been %s.%s\n\nBest regards,\nThe Admission Team",
			name, documentName, outcome, followUp),
	}
}

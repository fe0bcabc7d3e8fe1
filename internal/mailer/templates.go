package mailer

import "fmt"

// Message is a rendered email ready to hand to a Mailer.
type Message struct {
	Subject   string
	PlainText string
	HTMLBody  string
}

// InviteExistingUser renders the invitation email for an address that already
// has an account. The call to action points at the in-app invitations page.
func InviteExistingUser(listTitle, invitingUsername, invitationsURL string) Message {
	return Message{
		Subject: "You were invited to a new tasklist in Taskly",
		PlainText: fmt.Sprintf(
			"You were invited to a new tasklist with name %s by Taskly user %s.\n\nClick here to see your invitations: %s",
			listTitle, invitingUsername, invitationsURL),
		HTMLBody: fmt.Sprintf(`
			<h2>You've been invited to a new tasklist in Taskly!</h2>
			<p>You were invited to a new tasklist: <strong>%s</strong>.</p>
			<p>You were invited to this list by <strong>%s</strong></p>
			<p>Click the link below to view your invitations:</p>
			<p><a href='%s' style='color: #1E90FF; text-decoration: none;'>View Invitations</a></p>
			<br />
			<p>Best regards,<br />The Taskly Team</p>`,
			listTitle, invitingUsername, invitationsURL),
	}
}

// InviteNewUser renders the invitation email for an address with no account
// yet. The call to action is signing up; the invitation will be waiting.
func InviteNewUser(listTitle, invitingUsername, signupURL string) Message {
	return Message{
		Subject: "Register to see your new invitation in Taskly",
		PlainText: fmt.Sprintf(
			"You were invited by user %s to a new tasklist with name %s in Taskly.\n\nSign up for Taskly today to see your invitation.\n\nClick here to register: %s",
			invitingUsername, listTitle, signupURL),
		HTMLBody: fmt.Sprintf(`
			<h2>You've been invited to a new tasklist in Taskly!</h2>
			<p>You were invited to a new tasklist: <strong>%s</strong>.</p>
			<p>You were invited to this list by <strong>%s</strong></p>
			<p>Taskly is a free productivity web app for collaborative todo-lists - perfect for keeping track of tasks at work/for school/for everyday life!</p>
			<p>Click the link below to register for a free account and see your pending invitation:</p>
			<p><a href='%s' style='color: #1E90FF; text-decoration: none;'>Sign Up with Taskly!</a></p>
			<br />
			<p>Best regards,<br />The Taskly Team</p>`,
			listTitle, invitingUsername, signupURL),
	}
}

// PasswordReset renders the password reset email.
func PasswordReset(username, resetURL string) Message {
	return Message{
		Subject: "Password reset for your Taskly account",
		PlainText: fmt.Sprintf(
			"Hello %s!\n\nA password reset was requested for your Taskly account. Reset your password here: %s\n\nIf you did not request this, you can ignore this email.",
			username, resetURL),
		HTMLBody: fmt.Sprintf(`
			<h2>Reset your Taskly password</h2>
			<p>Hello <strong>%s</strong>!</p>
			<p>A password reset was requested for your account. Click the link below to choose a new password:</p>
			<p><a href='%s' style='color: #1E90FF; text-decoration: none;'>Update your password</a></p>
			<br />
			<p>Best regards,<br />The Taskly Team</p>`,
			username, resetURL),
	}
}

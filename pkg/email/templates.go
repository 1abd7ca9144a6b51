package email

// WelcomeEmailTemplate returns the HTML body for the welcome email
func WelcomeEmailTemplate() string {
	return `
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
	<h2>Welcome to Daybook</h2>
	<p>One entry a day, sixty seconds at a time.</p>
	<p>Your streak starts with today's entry.</p>
</body>
</html>`
}

// PasswordChangedEmailTemplate returns the HTML body for the password
// change notification
func PasswordChangedEmailTemplate() string {
	return `
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
	<h2>Password changed</h2>
	<p>Your Daybook password was just changed and all devices were signed out.</p>
	<p>If this wasn't you, reset your password immediately.</p>
</body>
</html>`
}

// ReminderEmailTemplate returns the HTML body for the daily reminder
func ReminderEmailTemplate() string {
	return `
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
	<h2>Don't break the streak</h2>
	<p>You haven't written today's entry yet. It only takes a minute.</p>
</body>
</html>`
}

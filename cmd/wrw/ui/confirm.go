package ui

// Confirm is the two-step delete dialog. Pages open it with a human-readable
// description of the target, flip Waiting once the delete request is issued,
// and close it only when the refreshed list confirms the target is gone.
type Confirm struct {
	Active  bool
	Target  string
	Waiting bool
}

// Open shows the dialog for the given target description.
func (c *Confirm) Open(target string) {
	c.Active = true
	c.Target = target
	c.Waiting = false
}

// Close hides the dialog and resets its state.
func (c *Confirm) Close() {
	c.Active = false
	c.Target = ""
	c.Waiting = false
}

// View renders the dialog.
func (c Confirm) View(styles Styles) string {
	if !c.Active {
		return ""
	}
	body := "Delete " + c.Target + "?\n\n"
	if c.Waiting {
		body += styles.Muted.Render("deleting...")
	} else {
		body += styles.Error.Render("[y]") + " delete   " + styles.Muted.Render("[n] cancel")
	}
	return styles.DialogDanger.Render(body)
}

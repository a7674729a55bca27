package views

import (
	"fmt"

	"github.com/rivo/tview"
	"github.com/sprava/spravaterm/internal/tui/ui"
)

// LoginView is the sign-in / sign-up form shown when no session exists.
type LoginView struct {
	*tview.Flex
	form     *tview.Form
	message  *tview.TextView
	onLogin  func(mail, password string)
	onSignup func(mail, username, password, dateOfBirth string)
}

// NewLoginView creates the authentication form.
func NewLoginView(theme *ui.Theme) *LoginView {
	v := &LoginView{
		form:    tview.NewForm(),
		message: tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter),
	}
	v.form.SetBorder(true).SetTitle(" Sign in to Sprava ")
	v.form.SetBorderColor(theme.BorderColor)
	v.form.SetBackgroundColor(theme.BgColor)
	v.form.SetTitleColor(theme.TitleColor)

	v.Flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.form, 0, 1, true).
		AddItem(v.message, 1, 0, false)

	v.buildLogin()
	return v
}

// SetOnLogin sets the sign-in callback.
func (v *LoginView) SetOnLogin(fn func(mail, password string)) { v.onLogin = fn }

// SetOnSignup sets the account-creation callback.
func (v *LoginView) SetOnSignup(fn func(mail, username, password, dateOfBirth string)) {
	v.onSignup = fn
}

// ShowError displays a failure under the form.
func (v *LoginView) ShowError(msg string) {
	v.message.SetText(fmt.Sprintf("[red]%s[-]", msg))
}

// Form exposes the form for focus handling.
func (v *LoginView) Form() *tview.Form { return v.form }

func (v *LoginView) buildLogin() {
	v.form.Clear(true)
	v.form.SetTitle(" Sign in to Sprava ")
	v.form.
		AddInputField("Mail", "", 40, nil, nil).
		AddPasswordField("Password", "", 40, '*', nil).
		AddButton("Sign in", func() {
			mail := v.fieldText(0)
			password := v.fieldText(1)
			if mail == "" || password == "" {
				v.ShowError("mail and password are required")
				return
			}
			if v.onLogin != nil {
				v.onLogin(mail, password)
			}
		}).
		AddButton("Create account", func() { v.buildSignup() })
}

func (v *LoginView) buildSignup() {
	v.form.Clear(true)
	v.form.SetTitle(" Create account ")
	v.form.
		AddInputField("Mail", "", 40, nil, nil).
		AddInputField("Username", "", 40, nil, nil).
		AddPasswordField("Password", "", 40, '*', nil).
		AddInputField("Date of birth (YYYY-MM-DD)", "", 40, nil, nil).
		AddButton("Create", func() {
			mail := v.fieldText(0)
			username := v.fieldText(1)
			password := v.fieldText(2)
			dob := v.fieldText(3)
			if mail == "" || username == "" || password == "" {
				v.ShowError("mail, username and password are required")
				return
			}
			if v.onSignup != nil {
				v.onSignup(mail, username, password, dob)
			}
		}).
		AddButton("Back", func() { v.buildLogin() })
}

func (v *LoginView) fieldText(i int) string {
	field, ok := v.form.GetFormItem(i).(*tview.InputField)
	if !ok {
		return ""
	}
	return field.GetText()
}

package notification

import (
	"bytes"
	"html/template"
)

// Subjects for the two transactional emails.
const (
	InvitationSubject = "You are invited to register for your event pass"
	PassSubject       = "Your Exclusive Digital Pass is Ready!"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html lang="en">
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f4f4f4; padding: 20px;">
    <table style="width: 100%; background-color: #ffffff; padding: 20px; border-radius: 8px;">
      <tr>
        <td>
          <h2 style="color: #2c3e50">Complete Your Registration</h2>
          <p>Dear Participant,</p>
          <p>
            Thank you for your recent payment! To finalize your registration,
            please take a moment to fill out the required form.
          </p>
          <p style="text-align: center; margin: 20px 0">
            <a href="{{.Link}}" style="background-color: #3498db; color: #ffffff; text-decoration: none; padding: 12px 25px; border-radius: 5px; font-size: 16px;">
              Complete Your Registration Form
            </a>
          </p>
          <p>
            The link is valid for 24 hours. Make sure all your details are
            accurate before submitting.
          </p>
          <p>We look forward to seeing you at the event!</p>
        </td>
      </tr>
    </table>
  </body>
</html>
`))

var passTmpl = template.Must(template.New("pass").Parse(`<!DOCTYPE html>
<html>
  <body style="margin: 0; padding: 0; background-color: #FFF3E0; font-family: Georgia, serif;">
    <div style="max-width: 480px; background-color: #fff8f0; border-radius: 16px; border: 4px solid #B71C1C; margin: 30px auto;">
      <div style="background: linear-gradient(45deg, #B71C1C, #F57C00); color: #FFD54F; text-align: center; padding: 30px 20px 20px; font-size: 30px; font-weight: 900; letter-spacing: 3px;">
        EVENT PASS
      </div>
      <div style="padding: 40px 30px; color: #4E342E; text-align: center;">
        <p style="font-size: 16px; margin-bottom: 25px;">
          Thank you, <strong style="color: #D84315;">{{.Name}}</strong>.
          Please present this code for entry.
        </p>
        <div style="margin: 0 auto 30px; background-color: white; border-radius: 12px; border: 3px solid #F57C00; padding: 20px; display: inline-block;">
          <img src="{{.QRImageURL}}" alt="QR Code" width="220" height="220" style="display: block;" />
        </div>
      </div>
    </div>
  </body>
</html>
`))

type invitationData struct {
	Link string
}

type passData struct {
	Name       string
	QRImageURL string
}

// RenderInvitation produces the invitation email body embedding the
// registration link.
func RenderInvitation(link string) (string, error) {
	var buf bytes.Buffer
	if err := invitationTmpl.Execute(&buf, invitationData{Link: link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderPass produces the pass-delivery email body embedding the hosted QR
// image.
func RenderPass(name, qrImageURL string) (string, error) {
	var buf bytes.Buffer
	if err := passTmpl.Execute(&buf, passData{Name: name, QRImageURL: qrImageURL}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package mail

import (
	"fmt"
	"html"
	"strings"

	"github.com/oyvindfi/bjorkvang/internal/data/entity"
)

// The email bodies are written in Norwegian, matching the public site.

// frame wraps content in the shared responsive HTML layout used by every
// outbound email.
func frame(title, content, actionText, actionURL, previewText string) string {
	if previewText == "" {
		previewText = title
	}

	button := ""
	if actionURL != "" {
		button = fmt.Sprintf(`
        <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="margin-top: 24px; margin-bottom: 24px;">
            <tr>
                <td align="center" bgcolor="#1a823b" style="border-radius: 6px;">
                    <a href="%s" target="_blank" style="font-family: sans-serif; font-size: 16px; font-weight: bold; color: #ffffff; text-decoration: none; display: inline-block; padding: 12px 24px; border: 1px solid #1a823b; border-radius: 6px;">%s</a>
                </td>
            </tr>
        </table>`, actionURL, html.EscapeString(actionText))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="no">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;background-color:#f3f4f6;color:#1f2937;line-height:1.6;">
<div style="display:none;font-size:1px;max-height:0px;overflow:hidden;">%s</div>
<div style="padding: 24px 12px;">
  <div style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:8px;overflow:hidden;">
    <div style="background-color:#1a823b;padding:24px;text-align:center;">
      <h1 style="margin:0;color:#ffffff;font-size:24px;">Bjørkvang</h1>
    </div>
    <div style="padding:32px 24px;">
      <h2 style="margin-top:0;font-size:20px;">%s</h2>
      %s
      %s
    </div>
    <div style="background-color:#f9fafb;padding:24px;text-align:center;font-size:14px;color:#6b7280;border-top:1px solid #e5e7eb;">
      <p>Dette er en automatisk melding fra Bjørkvang.</p>
      <p><a href="https://bjørkvang.no" style="color:#1a823b;text-decoration:none;">bjørkvang.no</a></p>
    </div>
  </div>
</div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(previewText), html.EscapeString(title), content, button)
}

func esc(s string) string {
	return html.EscapeString(s)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// BoardRequest notifies the board that a new request awaits approval.
func BoardRequest(b *entity.Booking, approveLink, rejectLink string) (subject, text, htmlBody string) {
	subject = "Ny bookingforespørsel – venter på godkjenning"

	text = fmt.Sprintf("Ny bookingforespørsel:\nDato: %s\nTid: %s\nNavn: %s\nE-post: %s\nMelding: %s\nGodkjenn: %s\nAvvis: %s",
		b.Date, b.Time, b.RequesterName, b.RequesterEmail, orDefault(b.Message, "Ingen melding"), approveLink, rejectLink)

	content := fmt.Sprintf(`
<p>Hei styret,</p>
<p>Det har kommet en ny bookingforespørsel som venter på godkjenning:</p>
<ul>
  <li><strong>Dato:</strong> %s</li>
  <li><strong>Tid:</strong> %s</li>
  <li><strong>Navn:</strong> %s</li>
  <li><strong>E-post:</strong> %s</li>
  <li><strong>Melding:</strong> %s</li>
</ul>
<p>Bruk knappene under for å godkjenne eller avvise:</p>
<p>
  <a href="%s" style="display:inline-block;padding:10px 16px;margin-right:12px;background:#1a823b;color:#ffffff;text-decoration:none;border-radius:4px;">Godkjenn booking</a>
  <a href="%s" style="display:inline-block;padding:10px 16px;background:#b3261e;color:#ffffff;text-decoration:none;border-radius:4px;">Avvis booking</a>
</p>`,
		esc(b.Date), esc(b.Time), esc(b.RequesterName), esc(b.RequesterEmail),
		esc(orDefault(b.Message, "Ingen melding oppgitt.")), approveLink, rejectLink)

	htmlBody = frame("Ny bookingforespørsel", content, "", "", "Ny bookingforespørsel venter på godkjenning.")
	return subject, text, htmlBody
}

// RequesterConfirmation acknowledges receipt of the request.
func RequesterConfirmation(b *entity.Booking) (subject, text, htmlBody string) {
	subject = "Vi har mottatt bookingforespørselen din"

	text = fmt.Sprintf("Hei %s,\n\nTakk for din forespørsel om å booke Bjørkvang.\n\nOppsummering av forespørselen:\n- Dato: %s\n- Tid: %s\n- Melding: %s\n\nStyret vil ta kontakt med deg så snart som mulig.\n\nVennlig hilsen\nBjørkvang",
		b.RequesterName, b.Date, b.Time, orDefault(b.Message, "Ingen melding oppgitt."))

	content := fmt.Sprintf(`
<p>Hei %s,</p>
<p>Takk for din forespørsel om å booke Bjørkvang.</p>
<p>Her er en oppsummering av hva du har sendt inn:</p>
<ul>
  <li><strong>Dato:</strong> %s</li>
  <li><strong>Tid:</strong> %s</li>
  <li><strong>Melding:</strong> %s</li>
</ul>
<p>Styret vil se gjennom forespørselen og ta kontakt med deg så snart som mulig.</p>`,
		esc(b.RequesterName), esc(b.Date), esc(b.Time), esc(orDefault(b.Message, "Ingen melding oppgitt.")))

	htmlBody = frame("Forespørsel mottatt", content, "", "", "Vi har mottatt bookingforespørselen din.")
	return subject, text, htmlBody
}

// Approved tells the requester the booking is approved and links the contract.
func Approved(b *entity.Booking, contractLink string) (subject, text, htmlBody string) {
	subject = "Din booking er godkjent"

	text = fmt.Sprintf("Hei %s! Booking %s kl. %s er godkjent. Signer leieavtalen her: %s",
		b.RequesterName, b.Date, b.Time, contractLink)

	content := fmt.Sprintf(`
<p>Hei %s!</p>
<p>Booking for %s kl. %s er nå godkjent.</p>
<p>Neste steg er å signere leieavtalen digitalt.</p>`,
		esc(b.RequesterName), esc(b.Date), esc(b.Time))

	htmlBody = frame("Booking godkjent", content, "Signer leieavtale", contractLink, "Din booking er godkjent.")
	return subject, text, htmlBody
}

// Rejected tells the requester the booking was declined, with the optional
// reason HTML-escaped.
func Rejected(b *entity.Booking, reason string) (subject, text, htmlBody string) {
	subject = "Din booking ble dessverre avvist"

	text = strings.TrimSpace(fmt.Sprintf("Hei %s. Booking %s kl. %s ble avvist. %s",
		b.RequesterName, b.Date, b.Time, reason))

	reasonHTML := "<p>Ta gjerne kontakt om du har spørsmål.</p>"
	if reason != "" {
		reasonHTML = fmt.Sprintf("<p>Årsak: %s</p>", esc(reason))
	}

	content := fmt.Sprintf(`
<p>Hei %s,</p>
<p>Vi må dessverre avvise booking for %s kl. %s.</p>
%s`, esc(b.RequesterName), esc(b.Date), esc(b.Time), reasonHTML)

	htmlBody = frame("Booking avvist", content, "", "", "Din bookingforespørsel ble avvist.")
	return subject, text, htmlBody
}

// PaymentRequest asks the requester to pay once both parties have signed.
func PaymentRequest(b *entity.Booking, paymentLink string) (subject, text, htmlBody string) {
	subject = "Leieavtalen er signert – betaling gjenstår"

	amountNOK := b.PaymentAmount / 100

	text = fmt.Sprintf("Hei %s. Leieavtalen for %s er nå signert av begge parter. Beløp: %d kr. Betal her: %s",
		b.RequesterName, b.Date, amountNOK, paymentLink)

	content := fmt.Sprintf(`
<p>Hei %s,</p>
<p>Leieavtalen for booking %s kl. %s er nå signert av begge parter.</p>
<p>Det gjenstår å betale leien på <strong>%d kr</strong>.</p>`,
		esc(b.RequesterName), esc(b.Date), esc(b.Time), amountNOK)

	htmlBody = frame("Klar for betaling", content, "Betal med Vipps", paymentLink, "Leieavtalen er signert, betaling gjenstår.")
	return subject, text, htmlBody
}

// PaymentConfirmation confirms a completed payment.
func PaymentConfirmation(b *entity.Booking) (subject, text, htmlBody string) {
	subject = "Betaling mottatt"

	amountNOK := b.PaymentAmount / 100

	text = fmt.Sprintf("Hei %s. Vi har mottatt betalingen på %d kr for booking %s kl. %s. Ordre: %s. Velkommen!",
		b.RequesterName, amountNOK, b.Date, b.Time, b.PaymentOrderID)

	content := fmt.Sprintf(`
<p>Hei %s,</p>
<p>Vi har mottatt betalingen din på <strong>%d kr</strong> for booking %s kl. %s.</p>
<p>Ordrenummer: %s</p>
<p>Velkommen til Bjørkvang!</p>`,
		esc(b.RequesterName), amountNOK, esc(b.Date), esc(b.Time), esc(b.PaymentOrderID))

	htmlBody = frame("Betaling mottatt", content, "", "", "Vi har mottatt betalingen din.")
	return subject, text, htmlBody
}

// Reminder nudges the requester, optionally quoting a comment from the board.
func Reminder(b *entity.Booking, comment, contractLink string) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("Påminnelse: Booking %s", b.Date)

	name := orDefault(b.RequesterName, "Kunde")

	text = fmt.Sprintf("Hei %s. Dette er en påminnelse vedrørende din booking på Bjørkvang (%s).", name, b.Date)
	if comment != "" {
		text += "\n\n" + comment
	}
	text += "\n\nGå til leieavtale: " + contractLink

	content := fmt.Sprintf(`
<p>Hei %s,</p>
<p>Dette er en påminnelse vedrørende din booking på Bjørkvang forsamlingslokale (%s).</p>`,
		esc(name), esc(b.Date))

	if comment != "" {
		content += fmt.Sprintf(`
<div style="background-color: #f9fafb; border-left: 4px solid #3b82f6; padding: 15px; margin: 20px 0; font-style: italic;">
  "%s"
</div>`, esc(comment))
	}

	content += `
<p>Vennligst sjekk status på din booking og signer leieavtalen hvis du ikke allerede har gjort det.</p>`

	htmlBody = frame("Påminnelse om booking", content, "Gå til leieavtale", contractLink,
		fmt.Sprintf("Påminnelse vedrørende din booking for %s.", b.Date))
	return subject, text, htmlBody
}

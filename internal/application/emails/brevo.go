package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Sender sends transactional emails (welcome, maturity notices). Nil = no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, firstName string) error
	SendGoldMatured(ctx context.Context, toEmail, firstName, grams string) error
	SendInvestmentMatured(ctx context.Context, toEmail, firstName, payout string) error
}

// BrevoClient sends emails via Brevo (Sendinblue) API. Env: SENDINBLUE_API_KEY, MAIL_FROM.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@aurum.gold"
}

// send sends one email via Brevo API.
func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Aurum"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: "support@aurum.gold", Name: "Aurum Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome sends the welcome email after account creation.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, firstName string) error {
	if c.APIKey == "" {
		return nil
	}
	if firstName == "" {
		firstName = "there"
	}
	return c.send(ctx, toEmail, "Welcome to Aurum!", EmailLayout(welcomeContent(firstName)))
}

// SendGoldMatured tells a customer their locked gold is now available.
func (c *BrevoClient) SendGoldMatured(ctx context.Context, toEmail, firstName, grams string) error {
	if c.APIKey == "" {
		return nil
	}
	if firstName == "" {
		firstName = "there"
	}
	return c.send(ctx, toEmail, "Your gold has matured", EmailLayout(goldMaturedContent(firstName, grams)))
}

// SendInvestmentMatured tells a customer their investment paid out.
func (c *BrevoClient) SendInvestmentMatured(ctx context.Context, toEmail, firstName, payout string) error {
	if c.APIKey == "" {
		return nil
	}
	if firstName == "" {
		firstName = "there"
	}
	return c.send(ctx, toEmail, "Your investment has matured", EmailLayout(investmentMaturedContent(firstName, payout)))
}

func welcomeContent(userName string) string {
	appURL := "https://aurum.gold/"
	return fmt.Sprintf(`
    <h1>Welcome, %s!</h1>
    <p>Thank you for joining <strong>Aurum</strong>. Your account and wallet are ready — top up, follow the live gold price, and start building your holdings today.</p>
    <center>
      <a href="%s" class="aurum-button">Open the App</a>
    </center>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you did not sign up for this account, please contact our support team immediately.
    </p>
    <p>— The Aurum Team</p>
`, EscapeHTML(userName), appURL)
}

func goldMaturedContent(userName, grams string) string {
	appURL := "https://aurum.gold/holdings"
	return fmt.Sprintf(`
    <h1>Your Gold Has Matured</h1>
    <p>Hi %s,</p>
    <p>Your holding of <strong>%s g</strong> has reached maturity and is now available to sell or withdraw.</p>
    <center>
      <a href="%s" class="aurum-button">View Your Holdings</a>
    </center>
    <p>— The Aurum Team</p>
`, EscapeHTML(userName), EscapeHTML(grams), appURL)
}

func investmentMaturedContent(userName, payout string) string {
	appURL := "https://aurum.gold/wallet"
	return fmt.Sprintf(`
    <h1>Your Investment Has Matured</h1>
    <p>Hi %s,</p>
    <p>Your fixed-term investment has completed and <strong>%s</strong> has been credited to your wallet.</p>
    <center>
      <a href="%s" class="aurum-button">View Your Wallet</a>
    </center>
    <p>— The Aurum Team</p>
`, EscapeHTML(userName), EscapeHTML(payout), appURL)
}

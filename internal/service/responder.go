package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/clock"
)

// ResponseSynthesizer produces the advisory text attached to a new ticket.
// It runs once per ticket, at creation.
type ResponseSynthesizer interface {
	Synthesize(ctx context.Context, title, description string) (string, error)
}

const (
	passwordResponse = "To reset your password, click on \"Forgot Password\" on the login page and follow the instructions sent to your email. If the email does not arrive within 5 minutes, check your spam folder."
	loginResponse    = "For login issues, please clear your browser cache and cookies, then try again. Make sure Caps Lock is off and that you are using the email address you registered with."
	bugResponse      = "Thank you for reporting this issue. Our technical team has been notified and will investigate. Steps to reproduce, screenshots or exact error messages will help us resolve it faster."
	featureResponse  = "Thank you for your feature request! We have logged your suggestion and our product team will review it. We will keep you updated on its status."
	genericResponse  = "Thank you for contacting support. We have received your ticket and a member of our team will respond within 24 hours. Ticket Reference: #%d"
)

type keywordRule struct {
	keywords []string
	response string
}

// Evaluated in order; the first rule with a matching keyword wins.
var keywordRules = []keywordRule{
	{keywords: []string{"password"}, response: passwordResponse},
	{keywords: []string{"login"}, response: loginResponse},
	{keywords: []string{"bug", "error"}, response: bugResponse},
	{keywords: []string{"feature", "request"}, response: featureResponse},
}

// KeywordSynthesizer picks a canned response by case-insensitive keyword
// match on the title and description, after a fixed delay that stands in
// for model latency.
type KeywordSynthesizer struct {
	clock clock.Clock
	delay time.Duration
}

// NewKeywordSynthesizer builds the responder.
func NewKeywordSynthesizer(clk clock.Clock, delay time.Duration) *KeywordSynthesizer {
	if clk == nil {
		clk = clock.Real()
	}
	return &KeywordSynthesizer{clock: clk, delay: delay}
}

// Synthesize waits out the delay and returns the matching response. The
// wait does not observe ctx: once a ticket is accepted it is completed.
func (s *KeywordSynthesizer) Synthesize(_ context.Context, title, description string) (string, error) {
	if s.delay > 0 {
		<-s.clock.After(s.delay)
	}
	return s.respond(title, description), nil
}

func (s *KeywordSynthesizer) respond(title, description string) string {
	title = strings.ToLower(title)
	description = strings.ToLower(description)
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(title, keyword) || strings.Contains(description, keyword) {
				return rule.response
			}
		}
	}
	return fmt.Sprintf(genericResponse, s.clock.Now().UnixMilli())
}

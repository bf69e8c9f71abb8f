// Package arcwizard runs the chat dialogue that mints activation codes for a
// doctor.
package arcwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"aesthetic_doctor_bot/internal/domain"
	"aesthetic_doctor_bot/internal/instrument"
	"aesthetic_doctor_bot/internal/session"
)

// Wizard outcomes recorded in instrument.WizardOutcomes.
const (
	OutcomeIssued         = "issued"
	OutcomeFallbackIssued = "fallback_issued"
	OutcomeCancelled      = "cancelled"
	OutcomeExhausted      = "exhausted"
	OutcomeInterrupted    = "interrupted"
)

const (
	promptFirstName    = "Let's create a new activation code.\nWhat is the doctor's first name?"
	repromptFirstName  = "Please send the doctor's first name."
	repromptLastName   = "Please send the doctor's last name."
	repromptYesNo      = "Please answer yes or no."
	replyCancelled     = "Code generation cancelled. Nothing was saved."
	replyExhausted     = "The alternative codes are already in use too. Start again with /get_new_code."
	replyInterrupted   = "The code workflow was interrupted. Start again with /get_new_code."
	expiryDateLayout   = "2/1/2006"
	endMessageTemplate = "Code generated for %s %s"
)

// CodeRegistry checks and records issued codes. Implementations never fail:
// lookups that cannot run report no conflicts.
type CodeRegistry interface {
	Conflicts(ctx context.Context, codes []string) []string
	Persist(ctx context.Context, records []domain.ActivationCode)
}

type Config struct {
	Sessions session.Store
	Registry CodeRegistry
	Logger   *logrus.Entry

	// Optional with defaults.
	Clock clockwork.Clock
	Label string
}

func (c *Config) Validate() error {
	if c.Sessions == nil {
		return errors.New("session store is required")
	}
	if c.Registry == nil {
		return errors.New("code registry is required")
	}
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if strings.TrimSpace(c.Label) == "" {
		c.Label = "MED"
	}
	return nil
}

// Wizard drives one dialogue per chat through the session store.
type Wizard struct {
	cfg Config
}

func New(cfg Config) (*Wizard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Wizard{cfg: cfg}, nil
}

// Active reports whether the chat is in the middle of a dialogue.
func (w *Wizard) Active(chatID int64) bool {
	return !w.cfg.Sessions.Get(chatID).Idle()
}

// Start begins a new dialogue, discarding any previous one.
func (w *Wizard) Start(chatID int64) domain.Reply {
	w.cfg.Sessions.Put(chatID, session.Session{Step: session.StepAwaitFirstName})
	return domain.TextReply(promptFirstName)
}

// Handle advances the chat's dialogue with one message. An idle chat yields
// an empty reply.
func (w *Wizard) Handle(ctx context.Context, chatID int64, text string) domain.Reply {
	sess := w.cfg.Sessions.Get(chatID)
	if !sess.Consistent() {
		return w.interrupt(chatID, sess)
	}

	input := strings.TrimSpace(text)

	switch sess.Step {
	case "", session.StepIdle:
		return domain.Reply{}
	case session.StepAwaitFirstName:
		if input == "" {
			return domain.TextReply(repromptFirstName)
		}
		sess.FirstName = input
		sess.Step = session.StepAwaitLastName
		w.cfg.Sessions.Put(chatID, sess)
		return domain.TextReply(fmt.Sprintf("Now send %s's last name.", input))
	case session.StepAwaitLastName:
		if input == "" {
			return domain.TextReply(repromptLastName)
		}
		return w.handleLastName(ctx, chatID, sess, input)
	case session.StepAwaitFallbackConfirmation:
		return w.handleConfirmation(ctx, chatID, sess, input)
	default:
		return w.interrupt(chatID, sess)
	}
}

func (w *Wizard) handleLastName(ctx context.Context, chatID int64, sess session.Session, lastName string) domain.Reply {
	sess.LastName = lastName
	sess.PrimaryCodes = Codes(lastName)
	sess.FallbackCodes = FallbackCodes(sess.FirstName, lastName)

	conflicts := w.cfg.Registry.Conflicts(ctx, sess.PrimaryCodes[:])
	if len(conflicts) == 0 {
		return w.issue(ctx, chatID, sess, sess.PrimaryCodes, OutcomeIssued)
	}

	sess.Step = session.StepAwaitFallbackConfirmation
	w.cfg.Sessions.Put(chatID, sess)

	w.cfg.Logger.WithFields(logrus.Fields{
		"chat_id":   chatID,
		"conflicts": conflicts,
	}).Info("primary activation codes already exist")

	return domain.TextReply(strings.Join([]string{
		"These codes already exist: " + strings.Join(conflicts, ", "),
		"Alternative codes:",
		sess.FallbackCodes[0],
		sess.FallbackCodes[1],
		"Use the alternative codes? (yes/no)",
	}, "\n"))
}

func (w *Wizard) handleConfirmation(ctx context.Context, chatID int64, sess session.Session, input string) domain.Reply {
	switch strings.ToLower(norm.NFC.String(input)) {
	case "si", "sì", "yes", "y":
		if conflicts := w.cfg.Registry.Conflicts(ctx, sess.FallbackCodes[:]); len(conflicts) > 0 {
			w.cfg.Sessions.Reset(chatID)
			instrument.WizardOutcomes.WithLabelValues(OutcomeExhausted).Inc()
			w.cfg.Logger.WithFields(logrus.Fields{
				"chat_id":   chatID,
				"conflicts": conflicts,
			}).Info("fallback activation codes already exist")
			return domain.TextReply(replyExhausted)
		}
		return w.issue(ctx, chatID, sess, sess.FallbackCodes, OutcomeFallbackIssued)
	case "no", "n":
		w.cfg.Sessions.Reset(chatID)
		instrument.WizardOutcomes.WithLabelValues(OutcomeCancelled).Inc()
		return domain.TextReply(replyCancelled)
	default:
		return domain.TextReply(repromptYesNo)
	}
}

func (w *Wizard) issue(ctx context.Context, chatID int64, sess session.Session, codes [2]string, outcome string) domain.Reply {
	now := w.cfg.Clock.Now().UTC()
	expiresAt := now.Add(domain.CodeTTL)
	endMessage := fmt.Sprintf(endMessageTemplate, sess.FirstName, sess.LastName)

	records := make([]domain.ActivationCode, 0, len(codes))
	for _, code := range codes {
		records = append(records, domain.ActivationCode{
			Code:       code,
			Label:      w.cfg.Label,
			ExpiresAt:  expiresAt,
			EndMessage: endMessage,
			CreatedAt:  now,
		})
	}

	w.cfg.Registry.Persist(ctx, records)
	w.cfg.Sessions.Reset(chatID)

	instrument.CodesIssued.Add(float64(len(records)))
	instrument.WizardOutcomes.WithLabelValues(outcome).Inc()

	return domain.TextReply(strings.Join([]string{
		fmt.Sprintf("Activation codes for %s %s:", sess.FirstName, sess.LastName),
		codes[0],
		codes[1],
		"Valid until " + expiresAt.Format(expiryDateLayout) + ".",
	}, "\n"))
}

func (w *Wizard) interrupt(chatID int64, sess session.Session) domain.Reply {
	w.cfg.Sessions.Reset(chatID)
	instrument.WizardOutcomes.WithLabelValues(OutcomeInterrupted).Inc()
	w.cfg.Logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"step":    sess.Step,
	}).Warn("unexpected wizard state, session reset")
	return domain.TextReply(replyInterrupted)
}

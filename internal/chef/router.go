package chef

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chefai/internal/intent"
)

// ErrEmptyInput rejects blank turns before any model call.
var ErrEmptyInput = errors.New("empty user input")

// ErrTurnTimeout marks a turn that exceeded the per-turn deadline. No
// session state is committed on this path.
var ErrTurnTimeout = errors.New("turn timed out")

// SubmitTurn processes one user turn for a session and returns the
// assistant's reply. At most one turn runs per session at a time;
// distinct sessions proceed concurrently.
func (c *Chef) SubmitTurn(ctx context.Context, sessionID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}

	release := c.sessions.Guard(sessionID)
	defer release()

	ctx, cancel := context.WithTimeout(ctx, c.turnTimeout)
	defer cancel()

	start := time.Now()
	snap := c.sessions.GetOrCreate(sessionID)

	top, fellBack, err := c.classifier.ClassifyTop(ctx, text, snap.Transcript())
	if err != nil {
		c.recordTurn("unclassified", start, err)
		return "", c.wrapTimeout(ctx, err)
	}
	if fellBack {
		c.recordFallback("top")
	}

	label := string(top)
	var reply string

	switch top {
	case intent.IntentRecipe:
		reply, err = c.handleRecipe(ctx, snap, text)

	case intent.IntentFoodRelated:
		var sub intent.SubIntent
		sub, fellBack, err = c.classifier.ClassifySub(ctx, text)
		if err != nil {
			break
		}
		if fellBack {
			c.recordFallback("sub")
		}
		label = fmt.Sprintf("%s/%s", top, sub)

		switch sub {
		case intent.SubIntentSafety:
			reply, err = c.handleSafety(ctx, snap, text)
		case intent.SubIntentConstants:
			reply, err = c.handleConstants(ctx, snap, text)
		case intent.SubIntentInstruct:
			reply, err = c.handleInstruct(ctx, snap, text)
		default:
			reply, err = c.handleEscalate(ctx, text)
		}

	default:
		reply, err = c.handleChat(ctx, snap, text)
	}

	if err != nil {
		c.recordTurn(label, start, err)
		return "", c.wrapTimeout(ctx, err)
	}

	// History commits only for completed turns, keeping failed turns out
	// of the window entirely.
	c.sessions.AppendTurn(sessionID, text, reply)
	c.recordTurn(label, start, nil)
	return reply, nil
}

// wrapTimeout distinguishes deadline expiry from backend failure for
// callers, keeping the original error in the chain.
func (c *Chef) wrapTimeout(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTurnTimeout, err)
	}
	return err
}

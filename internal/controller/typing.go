package controller

import (
	"context"
	"unicode"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/api/schemas"
	"github.com/xkilldash9x/ghosthand/internal/behavior"
)

// keyboardNeighbors maps characters to their adjacent keys on a QWERTY
// layout, used to pick plausible typo characters.
var keyboardNeighbors = map[rune]string{
	'1': "2q`", '2': "13wq", '3': "24we", '4': "35er", '5': "46rt", '6': "57ty",
	'7': "68yu", '8': "79ui", '9': "80io", '0': "9-op",
	'q': "wa1s", 'w': "qase23", 'e': "wsdr34", 'r': "edft45", 't': "rfgy56",
	'y': "tghu67", 'u': "yhji78", 'i': "ujko89", 'o': "iklp90", 'p': "ol;0-",
	'a': "qwsz", 's': "awedxz", 'd': "serfcx", 'f': "drtgvc", 'g': "ftyhbv",
	'h': "gyujnb", 'j': "huikmn", 'k': "jiol,m", 'l': "kop;.",
	'z': "asx", 'x': "zsdc", 'c': "xdfv", 'v': "cfgb", 'b': "vghn", 'n': "bhjm", 'm': "njk,",
}

// Type types text character by character with persona-driven keystroke
// delays, longer pauses at word boundaries, and the occasional typo that
// gets noticed and repaired.
func (c *Controller) Type(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setState(StateExecuting)
	defer c.setState(StateIdle)

	wordLength := 0
	for _, ch := range text {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := c.backend.Sleep(ctx, c.behavior.TypingDelay(c.opts.TypingDelayMin, c.opts.TypingDelayMax, ch)); err != nil {
			return err
		}

		if ch == ' ' {
			if err := c.sendRuneLocked(ctx, ch); err != nil {
				return err
			}
			if err := c.backend.Sleep(ctx, c.behavior.WordPause(wordLength)); err != nil {
				return err
			}
			wordLength = 0
			continue
		}
		wordLength++

		if c.behavior.ShouldMakeMistake(1.0) {
			if done, err := c.typoLocked(ctx, ch); err != nil {
				return err
			} else if done {
				continue
			}
		}

		if err := c.sendRuneLocked(ctx, ch); err != nil {
			return err
		}
	}

	c.behavior.RecordAction()
	return nil
}

// typoLocked types a neighboring key instead of ch and repairs it according
// to the persona's correction habits. Returns false when ch has no plausible
// neighbor, letting the caller type it normally.
func (c *Controller) typoLocked(ctx context.Context, ch rune) (bool, error) {
	neighbors, ok := keyboardNeighbors[unicode.ToLower(ch)]
	if !ok || len(neighbors) == 0 {
		return false, nil
	}

	typo := rune(neighbors[c.rng.Intn(len(neighbors))])
	if unicode.IsUpper(ch) {
		typo = unicode.ToUpper(typo)
	}

	if err := c.sendRuneLocked(ctx, typo); err != nil {
		return true, err
	}

	correction := c.behavior.ErrorCorrection()
	c.logger.Debug("typo",
		zap.String("intended", string(ch)),
		zap.String("typed", string(typo)),
		zap.String("correction", string(correction.Kind)))

	if correction.Kind == behavior.CorrectionIgnore {
		// The persona never notices; the typo stands.
		return true, nil
	}

	if err := c.backend.Sleep(ctx, correction.DelayBefore); err != nil {
		return true, err
	}
	if correction.Hesitate {
		if err := c.backend.Sleep(ctx, c.behavior.NaturalPause(behavior.PauseHesitation)); err != nil {
			return true, err
		}
	}

	if err := c.backend.PressKey(ctx, schemas.KeyBackspace); err != nil {
		return true, backendErr("press_key", err)
	}
	if err := c.backend.Sleep(ctx, c.behavior.TypingDelay(c.opts.TypingDelayMin, c.opts.TypingDelayMax, ch)); err != nil {
		return true, err
	}
	return true, c.sendRuneLocked(ctx, ch)
}

func (c *Controller) sendRuneLocked(ctx context.Context, ch rune) error {
	if err := c.backend.SendKeys(ctx, string(ch)); err != nil {
		return backendErr("send_keys", err)
	}
	return nil
}

// PressKey forwards a structured key press, with a short natural delay first.
func (c *Controller) PressKey(ctx context.Context, key schemas.KeyEventData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setState(StateExecuting)
	defer c.setState(StateIdle)

	if err := c.backend.Sleep(ctx, c.behavior.TypingDelay(c.opts.TypingDelayMin, c.opts.TypingDelayMax, 0)); err != nil {
		return err
	}
	if err := c.backend.PressKey(ctx, key); err != nil {
		return backendErr("press_key", err)
	}
	c.behavior.RecordAction()
	return nil
}

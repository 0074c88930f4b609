package noise

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// RuleCount reports how many messages matched one rule.
type RuleCount struct {
	Rule    string
	Matches int
}

// Report is the classifier's output: per-rule match counts and the union
// of matching message ids, in first-seen order.
type Report struct {
	PerRule []RuleCount
	IDs     []string
}

// Unique returns the size of the union.
func (r *Report) Unique() int { return len(r.IDs) }

// Classifier evaluates the junk rules against the messages table.
type Classifier struct {
	db    *sql.DB
	rules []Rule
	log   *zap.Logger
}

// NewClassifier builds a classifier over db. If rules is nil the default
// rule set is used.
func NewClassifier(db *sql.DB, rules []Rule, log *zap.Logger) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{db: db, rules: rules, log: log}
}

// Classify runs every rule independently over the full message set and
// returns the union of matches. No rule short-circuits another: a rule
// returning zero matches is normal, and every rule's count is reported
// even when its matches are all claimed by earlier rules.
func (c *Classifier) Classify(ctx context.Context) (*Report, error) {
	report := &Report{}
	seen := make(map[string]struct{})

	for _, rule := range c.rules {
		ids, err := c.matchRule(ctx, rule)
		if err != nil {
			return nil, fmt.Errorf("noise: rule %q: %w", rule.Name, err)
		}
		report.PerRule = append(report.PerRule, RuleCount{Rule: rule.Name, Matches: len(ids)})
		c.log.Debug("rule evaluated",
			zap.String("rule", rule.Name),
			zap.Int("matches", len(ids)))
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			report.IDs = append(report.IDs, id)
		}
	}

	c.log.Info("classification complete",
		zap.Int("rules", len(c.rules)),
		zap.Int("unique_matches", report.Unique()))
	return report, nil
}

func (c *Classifier) matchRule(ctx context.Context, rule Rule) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id FROM messages WHERE `+rule.Where)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

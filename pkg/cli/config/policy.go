package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/chatops-lab/chatrelay/pkg/usecase"
)

// Policy holds CLI flags for the thread-reply policy configuration
type Policy struct {
	path string
}

// ConversationPolicy is one per-conversation override in the TOML file
type ConversationPolicy struct {
	ID                 string `toml:"id"`
	AllowThreadReplies bool   `toml:"allow_thread_replies"`
}

// policyFile is the TOML file layout:
//
//	[[conversation]]
//	id = "C0123456789"
//	allow_thread_replies = true
type policyFile struct {
	Conversations []ConversationPolicy `toml:"conversation"`
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-config",
			Usage:       "Path to TOML file with per-conversation thread-reply overrides",
			Category:    "Policy",
			Sources:     cli.EnvVars("CHATRELAY_POLICY_CONFIG"),
			Destination: &p.path,
		},
	}
}

// Configure loads the thread policy. Without a config file the policy is the
// default: threaded replies are disallowed everywhere.
func (p *Policy) Configure() (*usecase.ThreadPolicy, error) {
	if p.path == "" {
		return usecase.NewThreadPolicy(nil), nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy config file", goerr.V("path", p.path))
	}

	var file policyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML policy config", goerr.V("path", p.path))
	}

	overrides := make(map[string]bool, len(file.Conversations))
	for _, c := range file.Conversations {
		if c.ID == "" {
			return nil, goerr.New("conversation id is required in policy config", goerr.V("path", p.path))
		}
		if _, exists := overrides[c.ID]; exists {
			return nil, goerr.New("duplicate conversation id in policy config",
				goerr.V("path", p.path), goerr.V("id", c.ID))
		}
		overrides[c.ID] = c.AllowThreadReplies
	}

	return usecase.NewThreadPolicy(overrides), nil
}

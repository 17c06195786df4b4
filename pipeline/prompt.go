/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/prompts"
)

var taskPrompt = prompts.MustNew(`You are a consumer research assistant answering a {{domain}} question. Search the web, ground every recommendation in current sources, and cite the URL of each source you rely on.

{{guidance}}

Question:
{{prompt}}`)

func guidanceFor(task *domain.Task) string {
	switch task.Domain {
	case domain.DomainShopping:
		if task.ProductFocus {
			return "Recommend concrete products, with current prices where relevant."
		}
		return "Recommend concrete shops or retailers, with locations or sites where relevant."
	case domain.DomainGaming:
		return "Recommend specific games and name the platform each runs on."
	case domain.DomainFood:
		return "Recommend specific dishes, recipes, or venues rather than general advice."
	default:
		return "Recommend specific, verifiable options."
	}
}

func buildTaskPrompt(task *domain.Task) (string, error) {
	t, err := taskPrompt.Bind("domain", string(task.Domain))
	if err != nil {
		return "", err
	}
	if t, err = t.Bind("guidance", guidanceFor(task)); err != nil {
		return "", err
	}
	if t, err = t.Bind("prompt", task.Prompt); err != nil {
		return "", err
	}
	return t.Build()
}

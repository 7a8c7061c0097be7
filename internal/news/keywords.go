package news

import (
	"regexp"
	"sort"
	"strings"
)

// Registry bundles the keyword data the selector runs on. The lists are
// product tuning, not logic: swap them without touching Select.
type Registry struct {
	// TrackedEntities maps an organization label to its aliases and product
	// names. A match marks the article priority and tags the company.
	TrackedEntities map[string][]string

	// CoreTerms are unambiguous AI vocabulary: model names, techniques,
	// lab names.
	CoreTerms []string

	// AdjacentTerms are broader tech/business words that count as topical
	// only in combination with the inclusion step.
	AdjacentTerms []string

	// HardExclusions reject an item outright, beating every other signal
	// including a tracked-entity match.
	HardExclusions []string
}

// DefaultRegistry returns the shipped keyword data.
func DefaultRegistry() *Registry {
	return &Registry{
		TrackedEntities: map[string][]string{
			"OpenAI":    {"openai", "chatgpt", "gpt-4", "gpt-5", "sora", "sam altman"},
			"Anthropic": {"anthropic", "claude"},
			"DeepMind":  {"deepmind", "gemini", "alphafold"},
			"DeepSeek":  {"deepseek"},
			"Meta AI":   {"meta ai", "llama"},
			"Alibaba":   {"qwen", "tongyi", "alibaba cloud"},
			"ByteDance": {"bytedance", "doubao", "coze"},
			"Mistral":   {"mistral"},
			"xAI":       {"xai", "grok"},
			"NVIDIA":    {"nvidia", "cuda", "jensen huang"},
		},
		CoreTerms: []string{
			"artificial intelligence", "machine learning", "deep learning",
			"large language model", "llm", "neural network", "transformer",
			"diffusion model", "multimodal", "foundation model", "agent",
			"reinforcement learning", "fine-tuning", "rag", "inference",
			"genai", "generative ai", "ai model", "ai chip",
		},
		AdjacentTerms: []string{
			"chatbot", "copilot", "automation", "robotics", "semiconductor",
			"gpu", "compute", "benchmark", "open source model", "startup",
			"funding", "dataset", "training",
		},
		HardExclusions: []string{
			"election", "congress", "senate", "parliament", "campaign rally",
			"military", "missile", "warfare", "drone strike", "troops",
			"vaccine", "clinical trial", "disease outbreak", "cancer treatment",
			"earthquake", "hurricane", "wildfire", "flood",
			"sanction", "tariff war", "impeach",
		},
	}
}

// ContainsAny reports whether text matches any keyword. Phrases match as
// substrings; short tokens (<=3 runes) require word boundaries so "ai"
// doesn't fire inside "said".
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}

		if strings.Contains(k, " ") {
			if strings.Contains(text, k) {
				return true
			}
			continue
		}

		if len(k) <= 3 {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
			if re.MatchString(text) {
				return true
			}
			continue
		}

		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// MatchTrackedEntity returns the label of the first tracked entity whose
// alias set matches text, or "". Labels are checked in sorted order so a
// text matching several entities always tags the same one.
func (r *Registry) MatchTrackedEntity(text string) string {
	labels := make([]string, 0, len(r.TrackedEntities))
	for label := range r.TrackedEntities {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		if ContainsAny(text, r.TrackedEntities[label]) {
			return label
		}
	}
	return ""
}

// IsTopical reports whether text belongs in the feed at all: a tracked
// entity, a core AI term, or an AI-adjacent term.
func (r *Registry) IsTopical(text string) bool {
	if r.MatchTrackedEntity(text) != "" {
		return true
	}
	return ContainsAny(text, r.CoreTerms) || ContainsAny(text, r.AdjacentTerms)
}

// IsHardExcluded reports whether text hits the off-topic denylist.
func (r *Registry) IsHardExcluded(text string) bool {
	return ContainsAny(text, r.HardExclusions)
}

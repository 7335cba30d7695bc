package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"voxcut/internal/services"
)

// Search runs one query against the corpus and returns matches in the
// mode's natural order: corpus order for sentence and fragment, random
// for mash, score-descending for semantic. Zero matches is a normal
// empty result, not an error.
func Search(ctx context.Context, docs []Document, query string, opts Options) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, services.Wrap(services.ErrEmptyQuery, "search", string(opts.Mode), "query is empty", nil)
	}

	switch opts.Mode {
	case ModeSentence, "":
		re, err := compileQuery(query, opts.WholeWord)
		if err != nil {
			return nil, err
		}
		return searchSentence(ctx, docs, re)
	case ModeFragment:
		patterns, err := compileTokens(query, opts.WholeWord)
		if err != nil {
			return nil, err
		}
		return searchFragment(ctx, docs, patterns)
	case ModeMash:
		return searchMash(ctx, docs, query, opts)
	case ModeSemantic:
		return searchSemantic(ctx, docs, query, opts)
	}
	return nil, services.Wrap(services.ErrValidation, "search", "dispatch",
		fmt.Sprintf("unsupported search mode %q", opts.Mode), nil)
}

// compileQuery builds the sentence-mode pattern. The query is treated
// as a regular expression; whole-word mode instead escapes it and
// anchors at word boundaries.
func compileQuery(query string, wholeWord bool) (*regexp.Regexp, error) {
	pattern := query
	if wholeWord {
		pattern = `\b` + regexp.QuoteMeta(query) + `\b`
	}
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidPattern, "search", "compile",
			fmt.Sprintf("invalid pattern %q", query), err)
	}
	return re, nil
}

// compileTokens builds one pattern per query word for fragment mode.
// Tokens always match literally; whole-word mode anchors each at word
// boundaries, otherwise substring containment is enough.
func compileTokens(query string, wholeWord bool) ([]*regexp.Regexp, error) {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil, services.Wrap(services.ErrEmptyQuery, "search", "compile", "query has no words", nil)
	}
	patterns := make([]*regexp.Regexp, len(tokens))
	for i, token := range tokens {
		pattern := regexp.QuoteMeta(token)
		if wholeWord {
			pattern = `\b` + pattern + `\b`
		}
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, services.Wrap(services.ErrInvalidPattern, "search", "compile",
				fmt.Sprintf("invalid token %q", token), err)
		}
		patterns[i] = re
	}
	return patterns, nil
}

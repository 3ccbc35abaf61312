package provider

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/models"
)

const (
	AliasLatest   = "latest"
	AliasPrevious = "previous"
)

// IsAlias reports whether ref names a release relative to the newest tag:
// latest, previous or latest~N.
func IsAlias(ref string) bool {
	return ref == AliasLatest || ref == AliasPrevious || strings.HasPrefix(ref, AliasLatest+"~")
}

func aliasOffset(alias string) (int, error) {
	switch {
	case alias == AliasLatest:
		return 0, nil
	case alias == AliasPrevious:
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(alias, AliasLatest+"~"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s~ offset in %q", AliasLatest, alias)
	}
	return n, nil
}

// SortTags orders semver tags newest first. Tags that are not semver are dropped.
func SortTags(tags []models.Ref) []models.Ref {
	type versioned struct {
		ref     models.Ref
		version *semver.Version
	}
	var list []versioned
	for _, tag := range tags {
		v, err := semver.NewVersion(tag.Name)
		if err != nil {
			logger.Tracef("skipping non-semver tag %s", tag.Name)
			continue
		}
		list = append(list, versioned{ref: tag, version: v})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].version.GreaterThan(list[j].version) })

	out := make([]models.Ref, len(list))
	for i, v := range list {
		out[i] = v.ref
	}
	return out
}

// ResolveRefs replaces release aliases in fromRef and toRef with tag names.
// Anything else is returned unchanged; tags are only listed when an alias is present.
func ResolveRefs(ctx context.Context, src Source, repo, fromRef, toRef string) (string, string, error) {
	if !IsAlias(fromRef) && !IsAlias(toRef) {
		return fromRef, toRef, nil
	}
	tags, err := src.ListTags(ctx, repo)
	if err != nil {
		return "", "", fmt.Errorf("list tags: %w", err)
	}
	sorted := SortTags(tags)

	resolve := func(ref string) (string, error) {
		if !IsAlias(ref) {
			return ref, nil
		}
		offset, err := aliasOffset(ref)
		if err != nil {
			return "", err
		}
		if offset >= len(sorted) {
			return "", fmt.Errorf("cannot resolve %q: %s has %d semver tags", ref, repo, len(sorted))
		}
		logger.Debugf("resolved %s to %s", ref, sorted[offset].Name)
		return sorted[offset].Name, nil
	}

	if fromRef, err = resolve(fromRef); err != nil {
		return "", "", err
	}
	if toRef, err = resolve(toRef); err != nil {
		return "", "", err
	}
	return fromRef, toRef, nil
}

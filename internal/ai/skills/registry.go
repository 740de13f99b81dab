package skills

import (
	"fmt"
	"sort"
)

// registry is fixed at build time: adding or removing a skill is a change to
// this list.
var registry = mustBuildRegistry(
	newLabSummaryHandler(),
	newSymptomExtractionHandler(),
	newClinicalNoteHandler(),
	newTriageHandler(),
	newCarePlanHandler(),
	newInventoryForecastHandler(),
	newQualityCheckHandler(),
)

func mustBuildRegistry(handlers ...Handler) map[ID]Handler {
	out := make(map[ID]Handler, len(handlers))
	for _, h := range handlers {
		if _, dup := out[h.ID()]; dup {
			panic(fmt.Sprintf("skills: duplicate handler for %q", h.ID()))
		}
		out[h.ID()] = h
	}
	return out
}

// Lookup returns the handler registered for id.
func Lookup(id ID) (Handler, error) {
	h, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSkill, id)
	}
	return h, nil
}

// IsSupported reports whether id has a registered handler.
func IsSupported(id ID) bool {
	_, ok := registry[id]
	return ok
}

// Supported lists the registered skill IDs in lexical order.
func Supported() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

package render

import (
	"fmt"

	"github.com/popeskul/spinecheck/internal/models"
)

// CTA is a call-to-action link.
type CTA struct {
	Label string
	URL   string
}

// SafetyGuidance is shown to recipients reporting worse symptoms when no care scheduling is
// offered.
const SafetyGuidance = "If your symptoms escalate, or you notice new numbness, weakness, or changes in bladder or bowel control, stop the exercises and seek in-person care right away."

// branchContent is what a branch contributes to a reply page.
type branchContent struct {
	Headline   string
	Lead       string
	Primary    CTA
	Secondary  *CTA
	SafetyCopy string
}

// branchView renders one branch. Every models.Branch has exactly one implementation below.
type branchView interface {
	content(l links) branchContent
}

var (
	_ branchView = betterView{}
	_ branchView = sameView{}
	_ branchView = worseView{}
)

func viewFor(branch models.Branch, expandedCare bool) (branchView, error) {
	switch branch {
	case models.BranchBetter:
		return betterView{}, nil
	case models.BranchSame:
		return sameView{}, nil
	case models.BranchWorse:
		return worseView{expandedCare: expandedCare}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBranch, branch)
}

type betterView struct{}

func (betterView) content(l links) branchContent {
	return branchContent{
		Headline: "Great to hear you're improving",
		Lead:     "Keep the momentum going with the next stage of your plan.",
		Primary: CTA{
			Label: "Get the Enhanced Guide",
			URL:   l.upgrade(tierEnhanced),
		},
		Secondary: &CTA{
			Label: "Go deeper with the Monograph",
			URL:   l.upgrade(tierMonograph),
		},
	}
}

type sameView struct{}

func (sameView) content(l links) branchContent {
	return branchContent{
		Headline: "Thanks for checking in",
		Lead:     "Steady is normal at this stage. A few adjustments can help things move.",
		Primary: CTA{
			Label: "Get the Enhanced Guide",
			URL:   l.upgrade(tierEnhanced),
		},
		Secondary: &CTA{
			Label: "Revisit your current guide",
			URL:   l.guide(),
		},
	}
}

type worseView struct {
	expandedCare bool
}

func (v worseView) content(l links) branchContent {
	c := branchContent{
		Headline: "We're sorry it's been a rough stretch",
		Lead:     "Flare-ups happen. Ease back to the gentlest movements in your guide.",
		Primary: CTA{
			Label: "Review your flare-up plan",
			URL:   l.guide(),
		},
	}
	if v.expandedCare {
		c.Secondary = &CTA{
			Label: "Schedule a comprehensive care consult",
			URL:   l.schedule(),
		}
		return c
	}
	c.SafetyCopy = SafetyGuidance
	return c
}

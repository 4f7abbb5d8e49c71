package decision

import (
	"sort"
	"time"

	"i9score/internal/catalog"
	"i9score/internal/decision/ports"
	dErrors "i9score/pkg/domain-errors"
)

// Config tunes the engine. Zero fields take their defaults.
type Config struct {
	Threshold   float64
	Patterns    map[FieldCategory][]string
	Citizenship CitizenshipPatterns
}

// Engine scores one document catalog. It is pure: no I/O and no shared
// mutable state, so one Engine may serve many goroutines.
type Engine struct {
	resolver    *Resolver
	classifier  *Classifier
	selector    *Selector
	support     *SupportMatcher
	expiry      *ExpiryMatcher
	rubric      *Rubric
	citizenship CitizenshipPatterns
}

// NewEngine assembles the scoring pipeline around an injected taxonomy.
func NewEngine(taxonomy ports.TaxonomyPort, cfg Config) (*Engine, error) {
	if taxonomy == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "taxonomy is required")
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if len(cfg.Citizenship.Citizen) == 0 && len(cfg.Citizenship.NonCitizen) == 0 {
		cfg.Citizenship = DefaultCitizenshipPatterns
	}

	resolver, err := NewResolver(cfg.Threshold, cfg.Patterns)
	if err != nil {
		return nil, err
	}
	classifier, err := NewClassifier(taxonomy, resolver)
	if err != nil {
		return nil, err
	}
	selector, err := NewSelector(resolver)
	if err != nil {
		return nil, err
	}
	support, err := NewSupportMatcher(taxonomy, resolver)
	if err != nil {
		return nil, err
	}
	expiry, err := NewExpiryMatcher(resolver)
	if err != nil {
		return nil, err
	}

	return &Engine{
		resolver:    resolver,
		classifier:  classifier,
		selector:    selector,
		support:     support,
		expiry:      expiry,
		rubric:      NewRubric(),
		citizenship: cfg.Citizenship,
	}, nil
}

// Evaluate runs classification, selection, matching and scoring in order.
func (e *Engine) Evaluate(doc catalog.Document, evaluatedAt time.Time) *ScoreReport {
	classified := e.classifier.ClassifyAll(doc)

	ev := &Evaluation{Classifications: classified}
	// ErrNoFormDetected leaves Selection nil, which scores as NO_I9_FOUND.
	if sel, err := e.selector.Select(classified); err == nil {
		ev.Selection = &sel
	}

	ev.Personal = e.personalData(classified, ev.Selection)
	ev.Citizenship = CitizenshipUnknown
	if m, ok := ev.Personal[FieldCitizenship]; ok {
		ev.Citizenship = e.citizenship.Classify(m.Value)
	}

	if ev.Selection != nil {
		ev.Attachments = e.support.Match(ev.Selection.Form.Documents, classified)

		workAuth := e.expiry.WorkAuthCandidates(classified)
		docExpiry := e.expiry.DocumentExpiryCandidates(ev.Selection.Form)
		if _, m, ok := LatestDate(workAuth); ok {
			ev.WorkAuth = &m
		}
		if _, m, ok := LatestDate(docExpiry); ok {
			ev.DocExpiry = &m
		}
		ev.Expiry = e.expiry.Match(workAuth, docExpiry)
	}

	outcome := e.rubric.Score(ev)
	return buildReport(doc.ID, ev, outcome, evaluatedAt)
}

// personalData resolves Section 1 values. Pages are consulted in order: the
// selected instance's Section 1 pages, other Section 1 pages latest first,
// then the remaining form pages as a last resort.
func (e *Engine) personalData(classified []PageClassification, sel *Selection) map[FieldCategory]FieldMatch {
	var preferred, section1, fallback []PageClassification
	for _, pc := range classified {
		switch {
		case pc.Category == CategorySection12 && pc.Section1 && sel != nil && sel.Form.Contains(pc.PageNumber):
			preferred = append(preferred, pc)
		case pc.Category == CategorySection12 && pc.Section1:
			section1 = append(section1, pc)
		case pc.Category.IsForm():
			fallback = append(fallback, pc)
		}
	}
	sort.SliceStable(section1, func(i, j int) bool { return section1[i].PageNumber > section1[j].PageNumber })
	sort.SliceStable(fallback, func(i, j int) bool { return fallback[i].PageNumber > fallback[j].PageNumber })

	order := append(append(preferred, section1...), fallback...)
	out := make(map[FieldCategory]FieldMatch, len(personalCriteria))
	for _, c := range personalCriteria {
		for _, pc := range order {
			if m, ok := e.resolver.First(c.cat, pc.Page); ok {
				out[c.cat] = m
				break
			}
		}
	}
	return out
}

// buildReport composes the immutable report.
// This is pure domain logic - no I/O, no side effects.
func buildReport(documentID string, ev *Evaluation, outcome Outcome, evaluatedAt time.Time) *ScoreReport {
	report := &ScoreReport{
		DocumentID:      documentID,
		BucketScores:    outcome.Scores,
		Bonus:           outcome.Bonus,
		Total:           outcome.Total,
		Status:          outcome.Status,
		Citizenship:     ev.Citizenship,
		Attachments:     ev.Attachments,
		Expiry:          ev.Expiry,
		Classifications: ev.Classifications,
		Audit:           outcome.Audit,
		EvaluatedAt:     evaluatedAt,
		Documents:       []DocumentRef{},
	}
	if report.Attachments == nil {
		report.Attachments = []MatchResult{}
	}

	if sel := ev.Selection; sel != nil {
		report.FormType = sel.Form.Category
		report.SignatureDate = sel.Form.SignatureDate
		report.SelectedPages = sel.Form.PageNumbers()
		report.TieBreak = sel.Ambiguous
		if sel.Form.Documents != nil {
			report.Documents = sel.Form.Documents
		}
	}
	for _, pc := range SupportingPages(ev.Classifications) {
		report.SupportingPages = append(report.SupportingPages, pc.PageNumber)
	}

	value := func(cat FieldCategory) string { return ev.Personal[cat].Value }
	report.PersonalData = PersonalData{
		FirstName:   value(FieldFirstName),
		LastName:    value(FieldLastName),
		MiddleName:  value(FieldMiddleName),
		DateOfBirth: value(FieldDOB),
		Citizenship: value(FieldCitizenship),
	}
	if ssn := value(FieldSSN); ssn != "" {
		report.PersonalData.SSN = MaskSSN(ssn)
	}
	return report
}

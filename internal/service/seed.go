package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kindred-health/kindred/internal/domain"
)

// SeedEntry is a curated knowledge base entry shipped with the application.
type SeedEntry struct {
	Expert    string
	Source    string
	SourceURL string
	Category  string
	Title     string
	Content   string
	Keywords  []string
}

// DefaultSeedEntries returns the starter corpus of expert knowledge. The
// categories cover every target of the keyword scorer's boost rules.
func DefaultSeedEntries() []SeedEntry {
	return []SeedEntry{
		{
			Expert:    "Dr. Robert Laitman",
			Source:    "Team Daniel / Doro Mind",
			SourceURL: "https://www.teamdanielrunningforrecovery.org",
			Category:  "clozapine",
			Title:     "Clozapine as Gold Standard Treatment",
			Content: `Clozapine is the only FDA-approved medication for treatment-resistant schizophrenia. Dr. Robert Laitman advocates for earlier use of clozapine rather than treating it as a "last resort."

Key outcomes with proper clozapine treatment:
- Reduces hospitalization by 85%
- Reduces suicide attempts by 90%
- Significantly improves quality of life
- Many patients return to independent, fulfilling lives

The E.A.S.E. model (published in Schizophrenia Research) provides guidance for optimum use of clozapine with careful monitoring and medication adjustments to mitigate side effects.`,
			Keywords: []string{"clozapine", "treatment-resistant", "schizophrenia", "medication", "recovery", "FDA", "hospitalization", "suicide", "EASE"},
		},
		{
			Expert:    "Dr. Robert Laitman",
			Source:    "Team Daniel",
			SourceURL: "https://www.teamdanielrunningforrecovery.org/book",
			Category:  "recovery",
			Title:     "Meaningful Recovery is Possible",
			Content: `Dr. Laitman's book "Meaningful Recovery from Schizophrenia and Serious Mental Illness with Clozapine" documents recovery outcomes from treating 100 patients over 10 years.

The biopsychosocial approach emphasizes:
- Primary treatment with clozapine for appropriate patients
- Wraparound support including diet and exercise
- Housing stability
- Education and vocational training
- Family involvement throughout the care journey

Schizophrenia is not a death sentence. With proper treatment, particularly early and optimal use of clozapine combined with comprehensive support, meaningful recovery is possible.`,
			Keywords: []string{"recovery", "hope", "meaningful recovery", "biopsychosocial", "support", "family", "Team Daniel"},
		},
		{
			Expert:    "Dr. Xavier Amador",
			Source:    "LEAP Institute",
			SourceURL: "https://leapinstitute.org",
			Category:  "communication",
			Title:     "The LEAP Method for Treatment Refusal",
			Content: `LEAP (Listen-Empathize-Agree-Partner) is an evidence-based communication approach developed by Dr. Xavier Amador to help gain cooperation from people who don't believe they are ill.

The core principle: "You win on the strength of your relationship, not your argument."

The LEAP approach:
- LISTEN: Practice reflective listening that immediately lowers anger and defensiveness
- EMPATHIZE: Convey genuine understanding of their perspective
- AGREE: Find common ground and shared goals (employment, housing, independence)
- PARTNER: Work together toward mutually beneficial outcomes

Scientific evidence is clear: trusting relationships result in acceptance of treatment and services.`,
			Keywords: []string{"LEAP", "communication", "treatment refusal", "denial", "relationship", "trust", "listen", "empathize", "agree", "partner"},
		},
		{
			Expert:    "Dr. Xavier Amador",
			Source:    "LEAP Institute",
			SourceURL: "https://leapinstitute.org/about/",
			Category:  "anosognosia",
			Title:     "Understanding Anosognosia",
			Content: `Anosognosia is a neurological symptom, not denial, that prevents people from recognizing they have a mental illness.

Prevalence:
- Affects approximately 50-60% of people with schizophrenia
- Affects 20-40% of people with bipolar disorder

This is the primary barrier to accepting help and leads to treatment refusal, medication noncompliance, homelessness, and family conflict.

Key insight: Anosognosia is caused by damage to the brain, specifically the frontal lobes. It is not stubbornness, denial, or a defense mechanism. Understanding this changes how families approach their loved ones.`,
			Keywords: []string{"anosognosia", "insight", "denial", "awareness", "frontal lobe", "brain damage", "treatment refusal"},
		},
		{
			Expert:    "Dr. E. Fuller Torrey",
			Source:    "Treatment Advocacy Center",
			SourceURL: "https://www.treatmentadvocacycenter.org",
			Category:  "advocacy",
			Title:     "Treatment Advocacy and Legal Reform",
			Content: `Dr. E. Fuller Torrey founded the Treatment Advocacy Center (TAC) in 1998. TAC's mission: eliminate barriers to treatment for serious mental illness and reform state civil commitment laws.

Key advocacy positions:
- Promotes Assisted Outpatient Treatment (AOT) when deemed appropriate by courts
- Helped pass Kendra's Law in New York allowing court-ordered outpatient treatment
- Advocates for treating people before crisis, not after
- Supports assertive community treatment (ACT) and supported housing/employment`,
			Keywords: []string{"advocacy", "TAC", "Kendra's Law", "AOT", "assisted outpatient treatment", "civil commitment", "legal", "court-ordered"},
		},
		{
			Expert:    "Dr. Deepak Cyril D'Souza",
			Source:    "Yale School of Medicine",
			SourceURL: "https://medicine.yale.edu/profile/deepak-dsouza/",
			Category:  "cannabis",
			Title:     "Cannabis and Psychosis: The Scientific Evidence",
			Content: `Dr. Deepak Cyril D'Souza, Professor of Psychiatry at Yale School of Medicine, is a world-renowned expert on cannabis pharmacology and its relationship to psychosis.

Key research findings:
- THC reliably produces transient psychotic symptoms in healthy volunteers
- The effects closely mimic schizophrenia symptoms
- 75% of early psychosis patients at Yale's STEP program had cannabis use history
- Up to 50% of cannabis-induced psychotic disorder patients are later diagnosed with schizophrenia or bipolar disorder
- Higher THC potency and frequency of use increases risk

Risk is comparable to the relationship between high cholesterol and heart disease.`,
			Keywords: []string{"cannabis", "THC", "marijuana", "psychosis", "Yale", "research", "CIPD", "D'Souza"},
		},
		{
			Expert:   "Multiple Sources",
			Source:   "Clinical Consensus",
			Category: "symptoms",
			Title:    "Understanding Psychotic Symptoms",
			Content: `Psychotic disorders like schizophrenia are characterized by three main symptom categories:

Positive Symptoms (additions to normal experience): hallucinations, delusions, thought disorganization, paranoia.

Negative Symptoms (subtractions from normal experience): amotivation, anhedonia, social withdrawal, affective flattening, reduced speech.

Cognitive Symptoms: deficits in attention and concentration, working memory problems, executive function impairment.

Negative and cognitive symptoms often cause more long-term disability than positive symptoms. Treatment should address all three categories.`,
			Keywords: []string{"symptoms", "positive symptoms", "negative symptoms", "cognitive", "hallucinations", "delusions", "paranoia"},
		},
		{
			Expert:   "Multiple Sources",
			Source:   "Clinical Consensus",
			Category: "early-intervention",
			Title:    "Early Intervention and Duration of Untreated Psychosis",
			Content: `The Duration of Untreated Psychosis (DUP) is a critical factor in outcomes. Longer DUP is associated with worse long-term outcomes; the first 2-5 years after onset are critical for treatment.

Warning signs that may precede psychosis: social withdrawal, declining school or work performance, unusual thoughts or perceptions, suspiciousness, difficulty concentrating, sleep disturbances.

If you notice these signs, seek evaluation promptly. First Episode Psychosis (FEP) programs provide coordinated specialty care, case management, family support, and low-dose medication management.`,
			Keywords: []string{"early intervention", "DUP", "prodromal", "warning signs", "first episode", "FEP"},
		},
		{
			Expert:    "Multiple Sources",
			Source:    "HIPAA / HHS",
			SourceURL: "https://www.hhs.gov/hipaa/for-individuals/mental-health/index.html",
			Category:  "legal",
			Title:     "HIPAA Rights for Family Caregivers",
			Content: `Understanding your rights as a family caregiver under HIPAA.

Healthcare providers can share information when:
- The patient is incapacitated or in an emergency
- The provider believes sharing is in the patient's best interest
- The patient has given verbal or written permission
- The patient is present and doesn't object

Tips for caregivers:
- Ask to be included in treatment team meetings
- Request that your loved one sign a release of information
- Provide information TO the treatment team even if they can't share back
- Know your state's civil commitment laws and Assisted Outpatient Treatment criteria`,
			Keywords: []string{"HIPAA", "privacy", "family", "caregiver", "rights", "information sharing", "incapacitated"},
		},
	}
}

// KnowledgeSeeder populates an empty knowledge store with the starter corpus.
type KnowledgeSeeder struct {
	repo    KnowledgeRepositoryInterface
	entries []SeedEntry
	uuidGen UUIDGenerator
}

// NewKnowledgeSeeder creates a KnowledgeSeeder with the default corpus
func NewKnowledgeSeeder(repo KnowledgeRepositoryInterface) *KnowledgeSeeder {
	return &KnowledgeSeeder{
		repo:    repo,
		entries: DefaultSeedEntries(),
		uuidGen: &DefaultUUIDGenerator{},
	}
}

// NewKnowledgeSeederWithEntries creates a KnowledgeSeeder with a custom corpus (for testing)
func NewKnowledgeSeederWithEntries(repo KnowledgeRepositoryInterface, entries []SeedEntry, uuidGen UUIDGenerator) *KnowledgeSeeder {
	return &KnowledgeSeeder{repo: repo, entries: entries, uuidGen: uuidGen}
}

// Seed inserts the starter corpus when the store is empty. It is a no-op
// when any entries already exist.
func (s *KnowledgeSeeder) Seed(ctx context.Context) error {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	log.Printf("seeding knowledge base with %d starter entries", len(s.entries))

	now := time.Now().UTC()
	for _, seed := range s.entries {
		entry := domain.NewKnowledgeEntry(
			s.uuidGen.NewString(),
			seed.Expert,
			seed.Source,
			seed.SourceURL,
			seed.Category,
			seed.Title,
			seed.Content,
			seed.Keywords,
			now,
			now,
		)
		if err := s.repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to seed entry %q: %w", seed.Title, err)
		}
	}

	return nil
}

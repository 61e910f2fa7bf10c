package intent

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

const (
	greetingReply = "Hello! How can I help you today? You can describe your symptoms or ask me about your prescriptions."
	thanksReply   = "You're welcome! Is there anything else I can help you with?"
	fallbackReply = "I'm not sure I understood that. Could you describe your symptoms, or ask me about your prescriptions?"
	checkReply    = "Let me check your recent prescriptions."
)

type symptomRule struct {
	specialization string
	keywords       []string
}

// Checked in order, first match wins. Multi-word keywords come before the
// single words they contain.
var symptomRules = []symptomRule{
	{"Cardiologist", []string{"chest pain", "palpitations", "heart", "blood pressure", "hypertension"}},
	{"Orthopedic", []string{"back pain", "joint pain", "fracture", "knee", "sprain"}},
	{"Neurologist", []string{"headache", "migraine", "dizziness", "dizzy", "seizure", "numbness"}},
	{"Dermatologist", []string{"rash", "acne", "eczema", "itching", "itchy", "skin"}},
	{"Gastroenterologist", []string{"stomach", "abdominal pain", "nausea", "diarrhea", "constipation", "vomiting"}},
	{"Dentist", []string{"toothache", "tooth", "teeth", "gums"}},
	{"Psychiatrist", []string{"anxiety", "depression", "insomnia", "stress", "panic"}},
	{"Ophthalmologist", []string{"eye", "eyes", "vision", "blurry"}},
	{"General Physician", []string{"fever", "cold", "cough", "flu", "sore throat", "fatigue", "tired"}},
}

var (
	prescriptionKeywords = []string{
		"prescription", "prescriptions", "medication", "medications",
		"medicine", "medicines", "reminder", "reminders", "pills", "dose",
	}
	greetingKeywords = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}
	thanksKeywords   = []string{"thanks", "thank you", "thx"}
)

// KeywordClassifier matches whole words and phrases against fixed tables.
// Prescription questions win over symptoms, symptoms over small talk.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (KeywordClassifier) Classify(_ context.Context, text string) (Intent, error) {
	norm := normalize(text)

	if containsAny(norm, prescriptionKeywords) {
		return Intent{Response: checkReply, CheckPrescriptions: true}, nil
	}

	for _, rule := range symptomRules {
		if containsAny(norm, rule.keywords) {
			return Intent{
				Response:       fmt.Sprintf("Based on your symptoms, I recommend consulting a %s.", rule.specialization),
				SuggestDoctor:  true,
				Specialization: rule.specialization,
			}, nil
		}
	}

	switch {
	case containsAny(norm, thanksKeywords):
		return Intent{Response: thanksReply}, nil
	case containsAny(norm, greetingKeywords):
		return Intent{Response: greetingReply}, nil
	}

	return Intent{Response: fallbackReply, Fallback: true}, nil
}

// normalize lower-cases, replaces punctuation with spaces and pads with a
// space on both ends so phrase lookups can match on word boundaries.
func normalize(text string) string {
	var b strings.Builder
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

func containsAny(norm string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(norm, " "+k+" ") {
			return true
		}
	}
	return false
}

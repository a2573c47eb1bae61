// Package walk holds the timing and step logic behind the demo walk screens:
// onboarding, the simulated progress bar and the hazard pop-up.
package walk

type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var OnboardingSteps = []Step{
	{"Stay Safe at Night", "AI-powered safety analysis of your walking routes with real-time hazard detection."},
	{"Smart Route Planning", "Compare multiple routes with detailed safety scores based on lighting, crime data, and crowd density."},
	{"Virtual Companion", "Share your live location with trusted contacts who can monitor your journey in real-time."},
	{"Instant Alerts", "Get notified about potential hazards, well-lit areas, and emergency services nearby."},
}

// Onboarding walks through OnboardingSteps. Once done the app moves to home.
type Onboarding struct {
	step int
	done bool
}

func NewOnboarding() *Onboarding { return &Onboarding{} }

func (o *Onboarding) Index() int    { return o.step }
func (o *Onboarding) Current() Step { return OnboardingSteps[o.step] }
func (o *Onboarding) Done() bool    { return o.done }

func (o *Onboarding) Last() bool { return o.step == len(OnboardingSteps)-1 }

func (o *Onboarding) Next() {
	if o.done {
		return
	}
	if o.Last() {
		o.done = true
		return
	}
	o.step++
}

func (o *Onboarding) Skip() { o.done = true }

func (o *Onboarding) ButtonLabel() string {
	if o.Last() {
		return "Get Started"
	}
	return "Continue"
}

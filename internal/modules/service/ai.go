package service

// AIService returns fixed design assistance payloads. No model is called;
// the request fields only fill in defaults.
type AIService interface {
	Suggestions(prompt string) []Suggestion
	GenerateComponent(description, framework, style string) GeneratedComponent
	AutoLayout() []LayoutSuggestion
	Accessibility() []AccessibilityHint
	Export(target string) ExportBundle
}

type Suggestion struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Preview     string   `json:"preview"`
}

type GeneratedComponent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Framework   string `json:"framework"`
	Style       string `json:"style"`
	Code        string `json:"code"`
	Preview     string `json:"preview"`
}

type LayoutSuggestion struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CSS         string `json:"css"`
	Tailwind    string `json:"tailwind"`
}

type AccessibilityHint struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

type ExportedComponent struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type ExportBundle struct {
	Framework  string              `json:"framework"`
	Components []ExportedComponent `json:"components"`
	Styles     map[string]string   `json:"styles"`
}

type aiService struct{}

func NewAIService() AIService { return aiService{} }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (aiService) Suggestions(string) []Suggestion {
	return []Suggestion{
		{
			Type:        "layout",
			Title:       "Modern Card Layout",
			Description: "A clean, modern card-based layout with proper spacing",
			Code:        "bg-white rounded-lg shadow-md p-6",
			Preview:     "https://via.placeholder.com/300x200/ffffff/000000?text=Card+Layout",
		},
		{
			Type:        "color",
			Title:       "Professional Color Palette",
			Description: "A sophisticated color scheme for business applications",
			Colors:      []string{"#1f2937", "#3b82f6", "#10b981", "#f59e0b"},
			Preview:     "https://via.placeholder.com/300x200/1f2937/ffffff?text=Color+Palette",
		},
		{
			Type:        "typography",
			Title:       "Readable Typography Scale",
			Description: "A well-balanced typography hierarchy",
			Code:        "text-4xl font-bold text-gray-900",
			Preview:     "https://via.placeholder.com/300x200/ffffff/000000?text=Typography",
		},
	}
}

const generatedComponentCode = `import React from 'react';

const GeneratedComponent = ({ title, children }) => {
  return (
    <div className="bg-white rounded-lg shadow-md p-6">
      <h2 className="text-2xl font-bold text-gray-900 mb-4">{title}</h2>
      <div className="text-gray-600">
        {children}
      </div>
    </div>
  );
};

export default GeneratedComponent;
`

func (aiService) GenerateComponent(description, framework, style string) GeneratedComponent {
	return GeneratedComponent{
		Name:        "GeneratedComponent",
		Description: description,
		Framework:   orDefault(framework, "react"),
		Style:       orDefault(style, "tailwind"),
		Code:        generatedComponentCode,
		Preview:     "https://via.placeholder.com/400x300/ffffff/000000?text=Generated+Component",
	}
}

func (aiService) AutoLayout() []LayoutSuggestion {
	return []LayoutSuggestion{
		{
			Type:        "grid",
			Description: "Organize elements in a responsive grid layout",
			CSS:         "display: grid; grid-template-columns: repeat(auto-fit, minmax(250px, 1fr)); gap: 1rem;",
			Tailwind:    "grid grid-cols-1 md:grid-cols-2 lg:grid-cols-3 gap-4",
		},
		{
			Type:        "flexbox",
			Description: "Arrange elements in a flexible row or column",
			CSS:         "display: flex; flex-direction: column; gap: 1rem;",
			Tailwind:    "flex flex-col gap-4",
		},
		{
			Type:        "stack",
			Description: "Stack elements vertically with consistent spacing",
			CSS:         "display: flex; flex-direction: column; gap: 1.5rem;",
			Tailwind:    "flex flex-col space-y-6",
		},
	}
}

func (aiService) Accessibility() []AccessibilityHint {
	return []AccessibilityHint{
		{
			Type:     "contrast",
			Severity: "warning",
			Message:  "Ensure sufficient color contrast for text readability",
			Fix:      "Use tools like WebAIM Contrast Checker to verify contrast ratios",
		},
		{
			Type:     "semantics",
			Severity: "info",
			Message:  "Use semantic HTML elements for better screen reader support",
			Fix:      "Replace div with appropriate elements like header, nav, main, section",
		},
		{
			Type:     "focus",
			Severity: "info",
			Message:  "Ensure all interactive elements are keyboard accessible",
			Fix:      "Add proper focus states and tabindex attributes",
		},
	}
}

const mainContainerCode = `import React from 'react';

const MainContainer = ({ children }) => {
  return (
    <div className="min-h-screen bg-gray-50">
      <div className="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8 py-8">
        {children}
      </div>
    </div>
  );
};

export default MainContainer;
`

func (aiService) Export(target string) ExportBundle {
	return ExportBundle{
		Framework:  orDefault(target, "react"),
		Components: []ExportedComponent{{Name: "MainContainer", Code: mainContainerCode}},
		Styles: map[string]string{
			"css":      "/* Custom CSS styles */",
			"tailwind": "/* Tailwind classes used */",
		},
	}
}

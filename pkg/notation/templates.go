package notation

import (
	"maps"
	"slices"
)

// DefaultDocument is the document a new editing session starts with.
const DefaultDocument = `graph TD
  A[Start]-->B[Process]
  B-->C[End]`

// Template is a named starter document.
type Template struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Kind        DiagramKind `json:"kind"`
	Description string      `json:"description"`
	Text        string      `json:"text"`
}

var templates = map[string]Template{
	"flowchart": {
		Title:       "Flowchart",
		Description: "Process with a decision",
		Text: `graph TD
    A[Start] --> B{Decision?}
    B -->|Yes| C[Action 1]
    B -->|No| D[Action 2]
    C --> E[End]
    D --> E`,
	},
	"sequence": {
		Title:       "Sequence",
		Description: "Interaction between participants",
		Text: `sequenceDiagram
    participant U as User
    participant S as Server
    participant D as Database

    U->>S: Request
    S->>D: Query
    D-->>S: Rows
    S-->>U: Response`,
	},
	"class": {
		Title:       "Class",
		Description: "Classes and inheritance",
		Text: `classDiagram
    class Animal {
        +String name
        +int age
        +eat()
        +sleep()
    }
    class Dog {
        +String breed
        +bark()
    }
    class Cat {
        +String color
        +meow()
    }
    Animal <|-- Dog
    Animal <|-- Cat`,
	},
	"gantt": {
		Title:       "Gantt",
		Description: "Project schedule",
		Text: `gantt
    title Project Plan
    dateFormat YYYY-MM-DD

    section Phase 1
    Analysis          :a1, 2024-01-01, 30d
    Design            :a2, after a1, 20d

    section Phase 2
    Development       :a3, after a2, 45d
    Testing           :a4, after a3, 15d`,
	},
	"er": {
		Title:       "Entity relationship",
		Description: "Entities and their relations",
		Text: `erDiagram
    CUSTOMER ||--o{ ORDER : places
    ORDER ||--|{ PRODUCT : contains
    CUSTOMER {
        int id
        string name
        string email
    }
    ORDER {
        int id
        date created
        float total
    }
    PRODUCT {
        int id
        string name
        float price
    }`,
	},
	"state": {
		Title:       "State",
		Description: "State machine",
		Text: `stateDiagram-v2
    [*] --> Idle
    Idle --> Running : start
    Running --> Paused : pause
    Paused --> Running : resume
    Running --> [*] : stop`,
	},
	"pie": {
		Title:       "Pie",
		Description: "Proportions",
		Text: `pie title Traffic sources
    "Search" : 45
    "Direct" : 30
    "Social" : 15
    "Referral" : 10`,
	},
	"journey": {
		Title:       "User journey",
		Description: "Steps and satisfaction",
		Text: `journey
    title Checkout
    section Browse
      Find product: 5: Customer
      Read reviews: 3: Customer
    section Buy
      Pay: 2: Customer
      Receive order: 5: Customer`,
	},
	"gitgraph": {
		Title:       "Git graph",
		Description: "Branches and merges",
		Text: `gitGraph
    commit
    branch develop
    checkout develop
    commit
    commit
    checkout main
    merge develop
    commit`,
	},
	"mindmap": {
		Title:       "Mind map",
		Description: "Hierarchy of ideas",
		Text: `mindmap
  root((Project))
    Goals
      Scope
      Budget
    Team
      Design
      Engineering`,
	},
	"timeline": {
		Title:       "Timeline",
		Description: "Events over time",
		Text: `timeline
    title Releases
    2022 : Prototype
    2023 : Beta
         : Public API
    2024 : 1.0`,
	},
	"quadrant": {
		Title:       "Quadrant",
		Description: "Priority matrix",
		Text: `quadrantChart
    title Effort versus impact
    x-axis Low effort --> High effort
    y-axis Low impact --> High impact
    quadrant-1 Plan
    quadrant-2 Do now
    quadrant-3 Skip
    quadrant-4 Delegate
    Feature A: [0.3, 0.8]
    Feature B: [0.7, 0.6]`,
	},
}

// Templates returns all built-in templates sorted by name.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, name := range slices.Sorted(maps.Keys(templates)) {
		out = append(out, lookup(name))
	}
	return out
}

// LookupTemplate returns the template with the given name.
func LookupTemplate(name string) (Template, bool) {
	if _, ok := templates[name]; !ok {
		return Template{}, false
	}
	return lookup(name), true
}

func lookup(name string) Template {
	t := templates[name]
	t.Name = name
	t.Kind = DetectKind(t.Text)
	return t
}

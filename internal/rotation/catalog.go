package rotation

// DefaultCatalog is the built-in candidate set per tier, in rotation order.
// The first entry in each tier doubles as the exhaustion fallback.
var DefaultCatalog = map[string][]Template{
	"enterprise": {
		{
			ID:      "ent-signal-opener",
			Subject: "{{ company }} and {{ signal }}",
			Body: "Hi {{ first_name }},\n\n" +
				"Saw that {{ company }} is {{ signal }}. Teams at that stage usually hit the same wall we help with.\n\n" +
				"Open to a short call?",
		},
		{
			ID:      "ent-peer-proof",
			Subject: "How teams like {{ company }} handle it",
			Body: "Hi {{ first_name }},\n\n" +
				"Two companies in {{ industry }} cut their review backlog in half last quarter. " +
				"Happy to share what changed if useful for {{ company }}.",
		},
		{
			ID:      "ent-direct-ask",
			Subject: "Quick one for {{ company }}",
			Body: "Hi {{ first_name }},\n\n" +
				"Who owns outbound quality at {{ company }} today? If it's you, I have one concrete idea worth two minutes.",
		},
	},
	"midmarket": {
		{
			ID:      "mm-signal-opener",
			Subject: "{{ signal }} at {{ company }}",
			Body: "Hi {{ first_name }},\n\n" +
				"Noticed {{ company }} is {{ signal }}, which is usually the point where manual review stops scaling.\n\n" +
				"Worth comparing notes?",
		},
		{
			ID:      "mm-pain-point",
			Subject: "{{ pain_point }}",
			Body: "Hi {{ first_name }},\n\n" +
				"Most {{ title }} leads we talk to name {{ pain_point }} as their top drag. Curious whether that matches {{ company }}.",
		},
	},
}

package config

// Default returns the compiled-in tables. Keyword lists are matched as
// lowercase substrings of the email text, so multi-word phrases are allowed.
func Default() Config {
	return Config{
		Knowledge: []KnowledgeEntry{
			{
				Name:     "login_issues",
				Keywords: []string{"login", "password", "access", "signin", "authenticate"},
				Solution: "For login issues: 1) Try the 'Forgot Password' option 2) Clear browser cache and cookies 3) Disable browser extensions 4) Try incognito/private mode. If issues persist, our technical team can reset your account within 2 hours.",
			},
			{
				Name:     "billing_issues",
				Keywords: []string{"billing", "payment", "charge", "refund", "invoice", "subscription"},
				Solution: "For billing inquiries: 1) Check your account dashboard under 'Billing' section 2) Verify payment method is valid 3) Review usage limits. Our billing team investigates discrepancies within 24 hours and processes refunds within 3-5 business days.",
				Escalate: true,
			},
			{
				Name:     "technical_issues",
				Keywords: []string{"api", "integration", "server", "database", "timeout", "error", "bug"},
				Solution: "For technical issues: 1) Check our status page for known issues 2) Review API documentation 3) Verify API keys and permissions 4) Check rate limits. Our engineering team prioritizes critical technical issues and provides updates every 2 hours.",
				Escalate: true,
			},
			{
				Name:     "account_issues",
				Keywords: []string{"account", "verification", "verify", "register", "signup", "profile"},
				Solution: "For account issues: 1) Check spam folder for verification emails 2) Ensure email address is correct 3) Try requesting new verification email. Account verification emails are sent instantly, and our support team can manually verify accounts within 1 hour if needed.",
			},
			{
				Name:     "general_inquiry",
				Keywords: []string{"question", "help", "information", "how to", "guide"},
				Solution: "Thank you for your inquiry. Our comprehensive documentation and FAQ section covers most common questions. For specific guidance, our support team provides detailed responses within 12-24 hours.",
			},
		},
		DefaultKnowledge: "general_inquiry",

		Sentiment: SentimentLexicon{
			Positive: []string{"thank", "appreciate", "great", "excellent", "good", "love", "awesome", "perfect", "satisfied", "happy"},
			Negative: []string{"problem", "issue", "error", "broken", "failed", "unable", "frustrated", "angry", "terrible", "awful", "disappointed"},
		},

		Priority: PriorityRules{
			Urgent:   []string{"urgent", "immediately", "asap", "emergency", "critical"},
			High:     []string{"important", "priority", "soon", "deadline", "business critical"},
			Normal:   []string{"question", "help", "inquiry", "information"},
			Low:      []string{"feedback", "suggestion", "general", "whenever"},
			Critical: []string{"production down", "system failure", "data loss", "security breach", "cannot access", "billing error"},
		},

		Ingest: IngestRules{
			Urgent: []string{
				"urgent", "immediately", "critical", "emergency", "asap",
				"cannot access", "system down", "not working", "broken",
				"servers down", "inaccessible", "immediate", "billing error",
				"deadline", "priority", "escalate", "frustrated", "angry",
				"losing money", "business critical", "production down",
			},
			Critical:   []string{"production down", "system failure", "data loss"},
			Escalation: []string{"critical", "emergency", "cannot access"},
			High:       []string{"asap", "immediately", "urgent"},
			Support: []string{
				"support", "help", "query", "request", "urgent", "critical",
				"issue", "problem", "error", "question", "assistance",
				"billing", "account", "login", "access", "technical",
				"bug", "feature", "feedback", "complaint", "refund",
			},
		},

		Extraction: ExtractionRules{
			RequestTypes: []RequestTypeRule{
				{Type: "cancellation_request", Keywords: []string{"refund", "cancel", "unsubscribe"}},
				{Type: "bug_report", Keywords: []string{"bug", "error", "not working", "broken"}},
				{Type: "information_request", Keywords: []string{"how to", "tutorial", "guide", "documentation"}},
				{Type: "feature_request", Keywords: []string{"feature", "improvement", "suggestion"}},
				{Type: "billing_inquiry", Keywords: []string{"billing", "payment", "charge"}},
			},
			DefaultRequestType: "general_support",
			TechnicalTerms:     []string{"api", "database", "server", "integration"},
			Resolutions: []ResolutionRule{
				{Estimate: "2-4 hours", Keywords: []string{"password", "login", "access"}},
				{Estimate: "1-2 business days", Keywords: []string{"billing", "refund", "payment"}},
				{Estimate: "2-5 business days", Keywords: []string{"api", "integration", "technical"}},
				{Estimate: "3-7 business days", Keywords: []string{"bug", "error", "broken"}},
			},
			DefaultResolution: "1-3 business days",
			Emotions: []EmotionRule{
				{Name: "frustration", Keywords: []string{"frustrated", "annoying", "annoyed", "irritated"}},
				{Name: "urgency", Keywords: []string{"urgent", "asap", "immediately", "quick", "fast"}},
				{Name: "confusion", Keywords: []string{"confused", "unclear", "understand", "explain", "help"}},
				{Name: "satisfaction", Keywords: []string{"thank", "appreciate", "satisfied", "happy", "pleased"}},
				{Name: "anger", Keywords: []string{"angry", "mad", "furious", "unacceptable", "terrible"}},
			},
			EnterpriseDomains: []string{"microsoft.com", "google.com", "amazon.com", "apple.com", "facebook.com"},
			StartupIndicators: []string{"startup", "ventures", "labs", "inc"},
		},

		Templates: ResponseTemplates{
			Openings: map[string][]string{
				"Negative": {
					"I sincerely apologize for the frustration you've experienced.",
					"I understand how concerning this situation must be for you.",
					"Thank you for bringing this to our attention, and I'm sorry for the inconvenience.",
				},
				"Positive": {
					"Thank you for your positive feedback and for reaching out!",
					"We're delighted to hear from you and appreciate your patience.",
					"Thank you for contacting us - we're here to help!",
				},
				"Neutral": {
					"Thank you for contacting our support team.",
					"We've received your inquiry and are here to assist you.",
					"Thank you for reaching out to us.",
				},
			},
			PriorityAcks: map[string]string{
				"Urgent": "This has been marked as high priority and our team will address it immediately.",
				"High":   "We understand the importance of this matter and will prioritize your request.",
				"Normal": "We'll ensure your request receives proper attention and care.",
				"Low":    "We appreciate you taking the time to contact us.",
			},
			Closings: map[string]string{
				"enterprise": "If you need any additional assistance, please don't hesitate to reach out to your dedicated account manager or our support team.\n\nBest regards,\nEnterprise Support Team",
				"startup":    "We're here to support your growth! If you have any other questions, feel free to reach out.\n\nBest regards,\nCustomer Success Team",
				"standard":   "If you have any additional questions, please don't hesitate to contact us.\n\nBest regards,\nCustomer Support Team",
				"education":  "We're committed to supporting educational institutions. Please let us know if you need any additional assistance.\n\nBest regards,\nEducation Support Team",
			},
			Apology:          "I want to personally apologize for this experience. ",
			FallbackSolution: "Our support team will review your inquiry and respond with a detailed solution within 24 hours.",
		},
	}
}

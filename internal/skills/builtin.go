package skills

import "inkwell/pkg/inktypes"

// builtinSkills returns the fixed fallback set loaded when no skills
// directory is available. Returned fresh on each call so callers can
// mutate their copies safely.
func builtinSkills() []inktypes.Skill {
	return []inktypes.Skill{
		{
			Name:        "code-review",
			Description: "Review and analyze code for improvements",
			Version:     "1.0.0",
			Instructions: `You are a code review expert. When asked to review code:
1. Analyze the code structure and readability
2. Identify potential bugs or issues
3. Suggest improvements for performance and maintainability
4. Check for security vulnerabilities
Provide constructive feedback with specific suggestions.`,
			Triggers: []string{"review code", "analyze code", "code review"},
			Enabled:  true,
		},
		{
			Name:        "refactor",
			Description: "Refactor and improve existing code",
			Version:     "1.0.0",
			Instructions: `You are a refactoring expert. When asked to refactor:
1. Preserve the original functionality
2. Improve code readability and maintainability
3. Apply SOLID principles
4. Reduce code duplication
5. Suggest incremental improvements
Explain your refactoring decisions.`,
			Triggers: []string{"refactor", "improve code", "restructure"},
			Enabled:  true,
		},
		{
			Name:        "explain",
			Description: "Explain code and concepts clearly",
			Version:     "1.0.0",
			Instructions: `You are a programming educator. When asked to explain:
1. Break down complex concepts into simple parts
2. Use analogies where helpful
3. Provide concrete examples
4. Consider the user's skill level
5. Be thorough but concise`,
			Triggers: []string{"explain", "what does", "how does", "why is"},
			Enabled:  true,
		},
		{
			Name:        "test",
			Description: "Generate tests for code",
			Version:     "1.0.0",
			Instructions: `You are a testing expert. When asked to create tests:
1. Cover edge cases and error conditions
2. Use descriptive test names
3. Follow AAA pattern (Arrange, Act, Assert)
4. Include both positive and negative test cases
5. Suggest testing strategies`,
			Triggers: []string{"test", "write tests", "generate tests", "unit test"},
			Enabled:  true,
		},
		{
			Name:        "doc",
			Description: "Generate documentation for code",
			Version:     "1.0.0",
			Instructions: `You are a technical writer. When asked to document:
1. Write clear, concise documentation
2. Include code examples where helpful
3. Document parameters, return values, and exceptions
4. Keep docs in sync with code
5. Use appropriate format (JSDoc, README, etc.)`,
			Triggers: []string{"document", "docs", "readme", "generate docs"},
			Enabled:  true,
		},
	}
}

package ai

// Post drafting prompts
const (
	DraftSystemPrompt = `You are an expert content writer specializing in SEO-optimized product reviews and trend articles. Always output valid JSON.`

	DraftUserPrompt = `Write a comprehensive, SEO-optimized blog post about: %s

Requirements:
- Length: 1500-2000 words
- Use Markdown with these H2 sections, in order:
  ## Introduction
  ## Key Features and Benefits
  ## Pros and Cons
  ## Buying Guide
  ## Frequently Asked Questions
  ## Conclusion
- Mention 3-5 specific products where relevant, with their Amazon ASIN when you know it
- Where a purchase link belongs, write the placeholder [Amazon Link]; for digital products use [ClickBank Link]
- Natural keyword usage, no keyword stuffing
- Current year: %d

Respond in JSON format:
{
  "title": "<SEO title under 60 characters>",
  "description": "<meta description under 160 characters>",
  "tags": ["<tag>", "<tag>", "<tag>"],
  "content": "<full Markdown article>",
  "products": [
    {"name": "<product name>", "asin": "<ASIN or null>"}
  ]
}`
)

// Writing assistant prompts
const (
	AssistantSystemPrompt = `You are a helpful blog writing assistant.`
)

package config

// DefaultNicheKeywords is the substring allowlist applied when niche
// filtering is on. Matching is case-insensitive.
var DefaultNicheKeywords = []string{
	// AI and ML
	"AI", "artificial intelligence", "machine learning", "GPT", "LLM",
	"ChatGPT", "Claude", "Gemini", "Llama", "Mistral", "neural network",
	"deep learning", "transformer", "diffusion", "stable diffusion",
	"midjourney", "DALL-E", "AI art", "AI video", "AI music",
	// Automation and workflows
	"automation", "n8n", "zapier", "make.com", "workflow",
	// Developer tooling
	"Python", "JavaScript", "API", "GitHub", "VS Code", "Cursor", "Copilot",
	"code assistant", "developer tools", "devops",
	// Productivity and SaaS
	"Notion", "Obsidian", "Canva", "Figma", "productivity", "SaaS",
	"no-code", "low-code", "Airtable", "Supabase",
	// Hardware
	"GPU", "NVIDIA", "AMD", "Apple", "M3", "M4", "MacBook",
	"smart home", "IoT", "Raspberry Pi", "Arduino",
}

// DefaultRelatedKeywords seed the related-query lookups
var DefaultRelatedKeywords = []string{
	"AI tools",
	"Python automation",
	"ChatGPT",
	"machine learning",
	"workflow automation",
}

// DefaultSeedTopics is the final backstop when no trend source yields a topic
var DefaultSeedTopics = []string{
	"AI Writing Tools for Content Creators",
	"Python Automation Scripts for Developers",
	"No-Code AI Tools for Beginners",
	"Best AI Image Generators",
	"Workflow Automation with n8n",
	"AI Coding Assistants Compared",
	"Local LLM Setup Guide",
	"AI Tools for Video Editing",
	"Notion AI Features",
	"GitHub Copilot Alternatives",
	"AI Voice Cloning Tools",
	"Stable Diffusion Workflows",
	"AI Research Paper Summarizers",
	"Smart Home Automation Ideas",
	"AI-Powered SEO Tools",
}

// DefaultBatchTopics is the fixed list generated by the batch command
var DefaultBatchTopics = []string{
	"Cloud GPUs for AI Training: RunPod vs Lambda vs Vast.ai",
	"Flux LoRA Fine-Tuning on RunPod: A Complete Setup Guide",
	"Jasper AI vs ChatGPT for Affiliate Marketing Content",
	"Building an AI Content Pipeline: From Idea to Published Post",
}

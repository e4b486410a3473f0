package constant

const (
	QAMessageRoleUser      = "user"
	QAMessageRoleAssistant = "assistant"
	QAMessageRoleSystem    = "system"
	QAMessageRoleTool      = "tool"

	// GROUNDED ANSWERING (Labor Regulations, Natural Output)
	QASystemPromptV1 = `### SYSTEM INSTRUCTIONS
Role: Labor Regulations Assistant
Task: Answer questions about labor law using ONLY the provided regulation extracts and tool results.

### CRITICAL RULES (MUST FOLLOW)
1. CITATION FORMAT:
   - Cite the official source for every legal statement, e.g. "(ET art. 34)".
   - Use source labels exactly as they appear in the extracts.
   - FORBIDDEN: Do NOT invent article numbers, deadlines, or amounts.

2. COVERAGE:
   - If the extracts contain the answer, give it.
   - If they do NOT, say plainly that the provided material does not cover it and recommend the official text.
   - When a collective agreement can modify the general rule, say so.

3. SCOPE:
   - General information, not legal advice. Never assess an individual case.

### RESPONSE STYLE
- Direct, concise, plain language.
- Answer first, legal basis second.
- No meta-talk ("Here is the answer...").`

	QASystemAckV1 = `Understood. I'll:
- Answer only from provided extracts and tool results
- Cite official sources inline, exactly as labeled
- State plainly when the material does not cover a question
- Keep answers direct, plain, and case-neutral

Ready.`

	// NATURAL CONTEXT (Structured Text for 8B Compliance)
	QAContextHeader = `=== REGULATION EXTRACTS ===`

	// QAContextEntryFormat renders one extract: index, source label,
	// effective date, content.
	QAContextEntryFormat = "--- EXTRACT %d (%s, effective %s) ---\n%s"

	QANoContextNote = `No regulation extracts were retrieved for this question. Say that the available material does not cover it.`

	QAMaxExtractChars = 1200

	// QAWelcomeMessage seeds new sessions so the history view is never empty.
	QAWelcomeMessage = `Hello! Ask me anything about labor regulations or collective agreements. I answer from official sources and cite them inline.`

	// QASessionTitleMaxLen caps titles derived from the first question.
	QASessionTitleMaxLen = 60
)

package agents

import "fmt"

const (
	drafterSystemInstruction = "You are an expert prompt engineer creating effective prompts for LLMs."
	reviserSystemInstruction = "You are an expert prompt engineer revising prompts based on evaluation feedback for single-response generation."

	// ItinerarySystemInstruction is the built-in planner instruction used when a
	// plan is started without a refined prompt.
	ItinerarySystemInstruction = `You are an expert travel planner. Using only the details in the user's request, produce a complete, structured, day-by-day travel itinerary in a single response.
- Do NOT ask clarifying questions. Where details such as budget, pace or accommodation style are missing, make plausible assumptions based on the stated interests and say which assumptions you made.
- Include estimated costs or budget ranges where appropriate.
- Format the plan with Markdown headings per day and bullet points per activity.
- When the user replies with feedback on a previous plan, apply it and return the full updated itinerary, not only the changes.`
)

const plannerDraftInstructions = `
This generated prompt MUST instruct the LLM planner to:
1.  Generate a complete, structured (e.g., day-by-day) travel itinerary based *only* on the details provided in the user's request.
2.  Make plausible assumptions or provide reasonable options for any missing details (like specific budget numbers, pace, accommodation style) based on the user's stated interests/style.
3.  Explicitly state that it should **NOT** ask clarifying questions, but generate the full plan directly in a single response.
4.  Include estimated costs or budget ranges where appropriate.
5.  Ensure the output is well-organized and easy to read.`

const generalDraftInstructions = `This prompt should encourage the LLM to think step-by-step, potentially use tools (if implied by the task), and structure its output clearly. Ensure the prompt is self-contained and provides enough context for the LLM to begin the task.`

func buildDraftPrompt(task string, planning bool) string {
	instructions := generalDraftInstructions
	if planning {
		instructions = plannerDraftInstructions
	}
	return fmt.Sprintf(`Based on the task description below, write a detailed first draft of a prompt for an LLM.
%s

Task Description:
"%s"

Generate ONLY the draft prompt itself, without any surrounding explanation or markdown formatting.`, instructions, task)
}

func buildEvaluatePrompt(draft string, planning bool) string {
	return fmt.Sprintf(`You are a Prompt Evaluation Assistant. Analyze the following prompt based on how well it guides an LLM to perform its task in a SINGLE RESPONSE, without asking questions (especially for planning tasks).

**Evaluation Criteria:**

1.  **Clarity of Task:** Is the task for the LLM clear from the prompt?
2.  **Completeness Instruction (for Planning):** If it's a planning prompt, does it explicitly instruct the LLM to generate a *complete* plan in one go?
3.  **No-Questions Instruction (for Planning):** If planning, does it explicitly forbid asking questions?
4.  **Structured Output Guidance:** Does it suggest a clear output format (e.g., day-by-day, JSON)?
5.  **Handling Missing Info (for Planning):** If planning, does it guide the LLM on making plausible assumptions?
6.  **Overall Effectiveness for Single Shot:** Is the prompt likely to result in a good quality single response?

---
**Input Prompt to Evaluate:**
`+"```prompt"+`
%s
`+"```"+`
---
**Your Response:** Respond ONLY with a single JSON object. Mark planning-specific criteria with `+"`true`/`false`"+` if applicable (isPlanningTask=%t), otherwise use `+"`null`"+`.

`+"```json"+`
{
  "clarity_of_task": boolean,
  "completeness_instruction": boolean | null,
  "no_questions_instruction": boolean | null,
  "structured_output_guidance": boolean,
  "handling_missing_info": boolean | null,
  "overall_effectiveness_single_shot": boolean,
  "summary": "Brief text summary noting strengths/weaknesses for single-shot generation."
}
`+"```"+`
`, draft, planning)
}

func buildRevisePrompt(task, draft, evaluationJSON string, planning bool) string {
	focus := "Focus on clarity, structure, and step-by-step guidance if applicable."
	if planning {
		focus = "Focus especially on ensuring the prompt explicitly demands a complete, single-shot plan without questions, and guides plausible assumption-making."
	}
	return fmt.Sprintf(`Objective: Revise the prompt below based on the evaluation feedback to make it more effective for generating a high-quality SINGLE response.
Original Task Description: "%s"

---
First Draft Prompt:
`+"```prompt"+`
%s
`+"```"+`
---
Evaluation Feedback (JSON):
`+"```json"+`
%s
`+"```"+`
---
Revise the **first draft prompt** based on the feedback. Improve areas marked `+"`false`"+` or noted as weaknesses in the `+"`summary`"+`. %s

Generate ONLY the **final, revised prompt**, without explanation or markdown formatting.`, task, draft, evaluationJSON, focus)
}

package openai

import "fmt"

const entryResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "found": {"type": "boolean"},
    "word": {"type": "string"},
    "pronunciation": {"type": "string"},
    "partOfSpeech": {"type": "string"},
    "definition": {"type": "string"},
    "translation": {"type": "string"}
  },
  "required": ["found", "word", "pronunciation", "partOfSpeech", "definition", "translation"],
  "additionalProperties": false
}`

const lookupPromptTemplate = `You are a concise bilingual dictionary for language learners.

Look up the word given by the user. The word is in %s. Return a single JSON object and nothing else.
Do not include any preamble, explanation, or markdown. Start your response with { and end with }.
Your output must exactly follow this schema:

%s

Rules:
- "word" is the dictionary form of the word as written by the user.
- "pronunciation" is IPA between slashes, or "" if unknown.
- "partOfSpeech" is one of: noun, verb, adjective, adverb, pronoun, preposition, conjunction, interjection, phrase.
- "definition" is one short sentence in %s, written for a learner.
- "translation" is the most common translation into %s, one to three words.
- If the input is not a real word, set "found" to false and leave the other strings empty.

Example:
Input: "serendipity"
Output:
{"found":true,"word":"serendipity","pronunciation":"/ˌserənˈdɪpɪti/","partOfSpeech":"noun","definition":"The luck of finding something good without looking for it.","translation":"serendipity"}`

func buildSystemPrompt(language, translationLanguage string) string {
	return fmt.Sprintf(lookupPromptTemplate, language, entryResponseSchema, language, translationLanguage)
}

package llm

const promptTemplate = `
Translate the following Chinese phrase into English and return the result as JSON containing the original text as 'original', its Pinyin as 'pinyin', the translation as 'translation', and the detected language of the phrase as 'language' with its English name as 'name' and its ISO 639-1 code as 'code'.

Chinese phrase: `

// BuildPrompt returns the prompt asking the model to translate text. The text
// is appended verbatim.
func BuildPrompt(text string) string {
	return promptTemplate + text
}

package retrieval

const intentClassificationPrompt = `Classify the intent of a student's question about a study document.

Question: %s

Respond ONLY with JSON in this exact shape:
{"type": "definition|comparison|example|summary|explanation|unknown", "confidence": 0.0-1.0, "keywords": ["3 to 5 key terms"]}`

const queryExpansionPrompt = `Suggest up to 6 related search terms (synonyms, closely related concepts) for the question below.
Key terms: %s
Question: %s

Respond ONLY with a JSON array of strings, for example ["term one", "term two"].`

const rerankPrompt = `Rate how relevant each passage is to the question on a scale of 1 to 10.

Question: %s

Passages:
%s
Respond ONLY with a JSON array: [{"chunk": <passage number>, "score": <1-10>}]`

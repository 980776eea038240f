// Package openai implements dictionary.Definer on top of any
// OpenAI-compatible chat completion API through langchaingo. It works with
// hosted OpenAI as well as local servers such as Ollama, LocalAI or vLLM.
package openai

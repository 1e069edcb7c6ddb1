package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Кэш энкодеров по модели. nil означает, что загрузить словарь не удалось.
var encoders sync.Map

func encoderFor(model string) *tiktoken.Tiktoken {
	if v, ok := encoders.Load(model); ok {
		return v.(*tiktoken.Tiktoken)
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			tke = nil
		}
	}
	encoders.Store(model, tke)
	return tke
}

// EstimateTokens оценивает число токенов текста для модели.
// Если словарь tiktoken недоступен, используется грубая оценка len/4.
func EstimateTokens(model, text string) int {
	if text == "" {
		return 0
	}
	if tke := encoderFor(model); tke != nil {
		return len(tke.Encode(text, nil, nil))
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

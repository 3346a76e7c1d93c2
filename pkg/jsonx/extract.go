// Package jsonx extrae objetos JSON del texto libre que devuelven los LLM.
// Los modelos suelen envolver el JSON en bloques markdown (```json ... ```)
// o añadir prosa alrededor; aquí se limpia antes de parsear.
package jsonx

import (
	"regexp"
	"strings"
)

// objectRe captura desde el primer '{' hasta el último '}' del texto.
var objectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractObject extrae el primer objeto JSON bien formado de un texto libre.
// Estrategia en dos pasos:
//  1. Eliminar bloques de código markdown (```json … ``` o ``` … ```).
//  2. Usar regex para capturar el primer bloque { … }.
//
// Devuelve cadena vacía si el texto no contiene ningún objeto.
func ExtractObject(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		// Quitar la línea de apertura (```json o ```)
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		// Quitar el cierre ```
		if close := strings.LastIndex(after, "```"); close != -1 {
			after = after[:close]
		}
		text = strings.TrimSpace(after)
	}

	// Si el texto resultante ya empieza con '{', usarlo directamente
	if strings.HasPrefix(text, "{") {
		return text
	}

	// Fallback: regex para extraer el primer {...}
	return strings.TrimSpace(objectRe.FindString(text))
}

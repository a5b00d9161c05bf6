package ports

import (
	"context"
	"errors"
)

// ErrLLMNotConfigured el proveedor de IA no tiene API key configurada.
var ErrLLMNotConfigured = errors.New("proveedor de IA no configurado")

// ChatTurn un mensaje del historial enviado al modelo (role: user | assistant).
type ChatTurn struct {
	Role    string
	Content string
}

// ChatLLM define el puerto de salida para el asistente conversacional.
// Cualquier adaptador (Anthropic, Gemini, mock) debe implementar esta interfaz.
// Siguiendo el principio de inversión de dependencias (DIP), la aplicación
// solo conoce este contrato, no la implementación concreta.
type ChatLLM interface {
	// Chat envía el historial (el último turno es el mensaje del usuario) y devuelve la respuesta.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	Chat(ctx context.Context, system string, history []ChatTurn) (string, error)
	// Name identifica al proveedor en logs y métricas.
	Name() string
}

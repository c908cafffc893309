package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/houzhh15/recetas/internal/models"
)

// printOutput 按指定格式输出；text 模式由 text 回调渲染
func printOutput(w io.Writer, format string, data any, text func(io.Writer)) error {
	if format == "json" || text == nil {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	}
	text(w)
	return nil
}

// printLine text 模式输出单行提示
func printLine(line string) func(io.Writer) {
	return func(w io.Writer) { fmt.Fprintln(w, line) }
}

// writeRecipeSummary 列表中的一行
func writeRecipeSummary(w io.Writer, r models.Recipe) {
	fmt.Fprintf(w, "#%-4d %s (tipo %d, %d porciones)\n", r.ID, r.Nombre, r.TipoID, r.Porciones)
}

// writeRecipeDetail 单个食谱的完整内容
func writeRecipeDetail(w io.Writer, r models.Recipe) {
	fmt.Fprintf(w, "#%d %s\n", r.ID, r.Nombre)
	if r.Descripcion != "" {
		fmt.Fprintf(w, "  %s\n", r.Descripcion)
	}
	fmt.Fprintf(w, "  fecha: %s  tipo: %d  porciones: %d\n", r.FechaCreacion, r.TipoID, r.Porciones)
	if r.Imagen != "" {
		fmt.Fprintf(w, "  imagen: %s\n", r.Imagen)
	}
	if len(r.Ingredientes) > 0 {
		fmt.Fprintln(w, "  ingredientes:")
		for _, ing := range r.Ingredientes {
			fmt.Fprintf(w, "    - %s: %s\n", ing.Nombre, ing.Cantidad)
		}
	}
	if len(r.Pasos) > 0 {
		fmt.Fprintln(w, "  pasos:")
		for i, p := range r.Pasos {
			n := p.Orden
			if n == 0 {
				n = i + 1
			}
			fmt.Fprintf(w, "    %d. %s\n", n, strings.TrimSpace(p.Descripcion))
		}
	}
}

package internal

// parser stores parser data
type parser struct {
	current int

	state *interpreterState
}

const maxFunctionParams = 255

func newParser(state *interpreterState) *parser {
	return &parser{state: state}
}

func (p *parser) parse() {
	for !p.isAtEnd() {
		st := p.parseStmt()
		// A statement that bailed out has already been reported, the
		// parser resumes at the next statement boundary.
		if st != nil {
			p.state.stmts = append(p.state.stmts, st)
		}
	}
}

// parseExpression parses a source that must consist of a single expression.
func (p *parser) parseExpression() (e expr) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseBailout); !ok {
				panic(r)
			}
			e = nil
		}
	}()
	e = p.expression()
	if !p.isAtEnd() {
		p.state.fatalError(p.peek(), "Expect end of expression.")
	}
	return e
}

func (p *parser) parseStmt() (s stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseBailout); !ok {
				panic(r)
			}
			p.synchronize()
			s = nil
		}
	}()
	return p.declaration()
}

func (p *parser) declaration() stmt {
	if p.match(CLASS) {
		return p.class()
	}
	if p.check(FUN) && p.checkNext(IDENTIFIER) {
		p.advance()
		return p.fn("function")
	}
	if p.match(VAR) {
		return p.varDecl()
	}
	return p.statement()
}

func (p *parser) class() stmt {
	name := p.consume(IDENTIFIER, "Expect class name.")

	var superclass *variableExpr
	if p.match(LESS) {
		superclass = &variableExpr{
			name: p.consume(IDENTIFIER, "Expect superclass name."),
		}
	}

	p.consume(LEFT_BRACE, "Expect '{' before class body.")

	var methods []*fnStmt
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		methods = append(methods, p.fn("method"))
	}

	p.consume(RIGHT_BRACE, "Expect '}' after class body.")

	return &classStmt{
		name:       name,
		superclass: superclass,
		methods:    methods,
	}
}

func (p *parser) fn(kind string) *fnStmt {
	name := p.consume(IDENTIFIER, "Expect "+kind+" name.")
	params, body := p.functionBody(kind)
	return &fnStmt{
		name:   name,
		params: params,
		body:   body,
	}
}

func (p *parser) fnExpr() expr {
	keyword := p.previous()
	params, body := p.functionBody("function")
	return &functionExpr{
		keyword: keyword,
		params:  params,
		body:    body,
	}
}

func (p *parser) functionBody(kind string) ([]*Token, []stmt) {
	p.consume(LEFT_PAREN, "Expect '(' after "+kind+" name.")

	var params []*Token
	if !p.check(RIGHT_PAREN) {
		for {
			if len(params) >= maxFunctionParams {
				p.state.tokenError(ErrParse, p.peek(), "Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(IDENTIFIER, "Expect parameter name."))
			if !p.match(COMMA) {
				break
			}
		}
	}
	p.consume(RIGHT_PAREN, "Expect ')' after parameters.")

	p.consume(LEFT_BRACE, "Expect '{' before "+kind+" body.")
	return params, p.block()
}

func (p *parser) varDecl() stmt {
	name := p.consume(IDENTIFIER, "Expect variable name.")

	var init expr
	if p.match(EQUAL) {
		init = p.expression()
	}

	p.consume(SEMICOLON, "Expect ';' after variable declaration.")
	return &varStmt{
		name:        name,
		initializer: init,
	}
}

func (p *parser) statement() stmt {
	if p.match(FOR) {
		return p.forLoop()
	}
	if p.match(IF) {
		return p.ifStmt()
	}
	if p.match(PRINT) {
		return p.printStmt()
	}
	if p.match(RETURN) {
		return p.ret()
	}
	if p.match(WHILE) {
		return p.while()
	}
	if p.match(LEFT_BRACE) {
		return &blockStmt{stmts: p.block()}
	}
	return p.expressionStmt()
}

// forLoop desugars `for (init; cond; inc) body` into
// `{ init; while (cond) { body; inc; } }`.
func (p *parser) forLoop() stmt {
	keyword := p.previous()
	p.consume(LEFT_PAREN, "Expect '(' after 'for'.")

	var init stmt
	if p.match(SEMICOLON) {
		init = nil
	} else if p.match(VAR) {
		init = p.varDecl()
	} else {
		init = p.expressionStmt()
	}

	var cond expr
	if !p.check(SEMICOLON) {
		cond = p.expression()
	}
	p.consume(SEMICOLON, "Expect ';' after loop condition.")

	var inc expr
	if !p.check(RIGHT_PAREN) {
		inc = p.expression()
	}
	p.consume(RIGHT_PAREN, "Expect ')' after for clauses.")

	body := p.statement()

	if inc != nil {
		body = &blockStmt{
			stmts: []stmt{body, &exprStmt{expression: inc}},
		}
	}
	if cond == nil {
		cond = &literalExpr{value: true}
	}
	body = &whileStmt{
		keyword:   keyword,
		condition: cond,
		body:      body,
	}
	if init != nil {
		body = &blockStmt{stmts: []stmt{init, body}}
	}
	return body
}

func (p *parser) ifStmt() stmt {
	st := &ifStmt{
		keyword: p.previous(),
	}

	p.consume(LEFT_PAREN, "Expect '(' after 'if'.")
	st.condition = p.expression()
	p.consume(RIGHT_PAREN, "Expect ')' after if condition.")

	st.thenBranch = p.statement()
	if p.match(ELSE) {
		st.elseBranch = p.statement()
	}

	return st
}

func (p *parser) printStmt() stmt {
	keyword := p.previous()
	value := p.expression()
	p.consume(SEMICOLON, "Expect ';' after value.")
	return &printStmt{
		keyword:    keyword,
		expression: value,
	}
}

func (p *parser) ret() stmt {
	var value expr
	keyword := p.previous()
	if !p.check(SEMICOLON) {
		value = p.expression()
	}
	p.consume(SEMICOLON, "Expect ';' after return value.")
	return &returnStmt{
		keyword: keyword,
		value:   value,
	}
}

func (p *parser) while() stmt {
	keyword := p.previous()
	p.consume(LEFT_PAREN, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(RIGHT_PAREN, "Expect ')' after condition.")
	body := p.statement()
	return &whileStmt{
		keyword:   keyword,
		condition: cond,
		body:      body,
	}
}

func (p *parser) block() []stmt {
	stmts := make([]stmt, 0)
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	p.consume(RIGHT_BRACE, "Expect '}' after block.")
	return stmts
}

func (p *parser) expressionStmt() stmt {
	expr := p.expression()
	p.consume(SEMICOLON, "Expect ';' after expression.")
	return &exprStmt{expression: expr}
}

func (p *parser) expression() expr {
	return p.assignment()
}

func (p *parser) assignment() expr {
	expr := p.or()
	if p.match(EQUAL) {
		equal := p.previous()
		value := p.assignment()

		if variable, isVar := expr.(*variableExpr); isVar {
			return &assignExpr{
				name:  variable.name,
				value: value,
			}
		} else if get, isGet := expr.(*getExpr); isGet {
			return &setExpr{
				object: get.object,
				name:   get.name,
				value:  value,
			}
		}

		// Reported without unwinding: the parser is not confused.
		p.state.tokenError(ErrParse, equal, "Invalid assignment target.")
	}
	return expr
}

func (p *parser) or() expr {
	expr := p.and()
	for p.match(OR) {
		operator := p.previous()
		right := p.and()
		expr = &logicalExpr{
			left:     expr,
			operator: operator,
			right:    right,
		}
	}
	return expr
}

func (p *parser) and() expr {
	expr := p.equality()
	for p.match(AND) {
		operator := p.previous()
		right := p.equality()
		expr = &logicalExpr{
			left:     expr,
			operator: operator,
			right:    right,
		}
	}
	return expr
}

func (p *parser) equality() expr {
	expr := p.comparison()
	for p.match(EQUAL_EQUAL, BANG_EQUAL) {
		operator := p.previous()
		right := p.comparison()
		expr = &binaryExpr{
			left:     expr,
			operator: operator,
			right:    right,
		}
	}
	return expr
}

func (p *parser) comparison() expr {
	expr := p.addition()
	for p.match(GREATER, GREATER_EQUAL, LESS, LESS_EQUAL) {
		operator := p.previous()
		right := p.addition()
		expr = &binaryExpr{
			left:     expr,
			operator: operator,
			right:    right,
		}
	}
	return expr
}

func (p *parser) addition() expr {
	expr := p.multiplication()
	for p.match(PLUS, MINUS) {
		operator := p.previous()
		right := p.multiplication()
		expr = &binaryExpr{
			left:     expr,
			operator: operator,
			right:    right,
		}
	}
	return expr
}

func (p *parser) multiplication() expr {
	expr := p.unary()
	for p.match(SLASH, STAR) {
		operator := p.previous()
		right := p.unary()
		expr = &binaryExpr{
			left:     expr,
			operator: operator,
			right:    right,
		}
	}
	return expr
}

func (p *parser) unary() expr {
	if p.match(BANG, MINUS) {
		operator := p.previous()
		right := p.unary()
		return &unaryExpr{
			operator: operator,
			right:    right,
		}
	}
	return p.call()
}

func (p *parser) call() expr {
	expr := p.primary()
	for {
		if p.match(LEFT_PAREN) {
			expr = p.finishCall(expr)
		} else if p.match(DOT) {
			name := p.consume(IDENTIFIER, "Expect property name after '.'.")
			expr = &getExpr{
				object: expr,
				name:   name,
			}
		} else {
			break
		}
	}
	return expr
}

func (p *parser) finishCall(callee expr) expr {
	arguments := make([]expr, 0)
	if !p.check(RIGHT_PAREN) {
		for {
			if len(arguments) >= maxFunctionParams {
				p.state.tokenError(ErrParse, p.peek(), "Can't have more than 255 arguments.")
			}
			arguments = append(arguments, p.expression())
			if !p.match(COMMA) {
				break
			}
		}
	}
	paren := p.consume(RIGHT_PAREN, "Expect ')' after arguments.")
	return &callExpr{
		callee:    callee,
		paren:     paren,
		arguments: arguments,
	}
}

func (p *parser) primary() expr {
	if p.match(FALSE) {
		return &literalExpr{value: false}
	}
	if p.match(TRUE) {
		return &literalExpr{value: true}
	}
	if p.match(NIL) {
		return &literalExpr{value: nil}
	}
	if p.match(NUMBER, STRING) {
		return &literalExpr{value: p.previous().Literal}
	}
	if p.match(SUPER) {
		keyword := p.previous()
		p.consume(DOT, "Expect '.' after 'super'.")
		return &superExpr{
			keyword: keyword,
			method:  p.consume(IDENTIFIER, "Expect superclass method name."),
		}
	}
	if p.match(THIS) {
		return &thisExpr{keyword: p.previous()}
	}
	if p.match(IDENTIFIER) {
		return &variableExpr{name: p.previous()}
	}
	if p.match(FUN) {
		return p.fnExpr()
	}
	if p.match(LEFT_PAREN) {
		expr := p.expression()
		p.consume(RIGHT_PAREN, "Expect ')' after expression.")
		return &groupingExpr{expression: expr}
	}

	p.state.fatalError(p.peek(), "Expect expression.")
	return nil
}

func (p *parser) consume(tk TokenType, msg string) *Token {
	if p.check(tk) {
		return p.advance()
	}
	p.state.fatalError(p.peek(), msg)
	return nil
}

func (p *parser) advance() *Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) match(tokens ...TokenType) bool {
	for _, token := range tokens {
		if p.check(token) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) check(token TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == token
}

func (p *parser) checkNext(token TokenType) bool {
	if p.isAtEnd() || p.current+1 >= len(p.state.tokens) {
		return false
	}
	return p.state.tokens[p.current+1].Type == token
}

func (p *parser) peek() *Token {
	return &p.state.tokens[p.current]
}

func (p *parser) previous() *Token {
	return &p.state.tokens[p.current-1]
}

func (p *parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == SEMICOLON {
			return
		}
		switch p.peek().Type {
		case CLASS, FUN, VAR, FOR, IF, WHILE, PRINT, RETURN:
			return
		}
		p.advance()
	}
}
